package constants

const (
	AppName = "jyotish"

	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "JYOTISH"
)

// Appointment length is fixed; the end time is always derived from it.
const AppointmentMinutes = 15
