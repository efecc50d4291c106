package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Mobile       string     `json:"mobile"`
	Address      string     `json:"address,omitempty"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
	EmailOptOut  bool       `json:"email_opt_out"`
	SMSOptOut    bool       `json:"sms_opt_out"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsBlockedAt reports whether the block is still in force at now.
func (u *User) IsBlockedAt(now time.Time) bool {
	return u.BlockedUntil != nil && u.BlockedUntil.After(now)
}

// NotificationPrefs is the per-channel view of the opt-out flags.
type NotificationPrefs struct {
	AppointmentEmail bool `json:"appointment_email"`
	AppointmentSMS   bool `json:"appointment_sms"`
}

func (u *User) NotificationPrefs() NotificationPrefs {
	return NotificationPrefs{AppointmentEmail: !u.EmailOptOut, AppointmentSMS: !u.SMSOptOut}
}

// UserPatch is a partial profile update; nil fields are left unchanged.
type UserPatch struct {
	Name        *string
	Username    *string
	Email       *string
	Mobile      *string
	Address     *string
	EmailOptOut *bool
	SMSOptOut   *bool
}

func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Username == nil && p.Email == nil && p.Mobile == nil && p.Address == nil &&
		p.EmailOptOut == nil && p.SMSOptOut == nil
}

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Appointment struct {
	ID     uuid.UUID         `json:"id"`
	UserID uuid.UUID         `json:"user_id"`
	Date   time.Time         `json:"date"`
	End    time.Time         `json:"end_time"`
	Status AppointmentStatus `json:"status"`
	// WeekStart is Sunday 00:00 local of Date; it backs the weekly unique
	// index. Zero marks a booking exempt from the weekly limit.
	WeekStart time.Time `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentPatch is a partial ledger update. Rescheduling sets Date, End
// and WeekStart together.
type AppointmentPatch struct {
	Status    *AppointmentStatus
	Date      *time.Time
	End       *time.Time
	WeekStart *time.Time
}

type Slot struct {
	ID        uuid.UUID `json:"id"`
	Date      time.Time `json:"date"`
	IsEnabled bool      `json:"is_enabled"`
	CreatedAt time.Time `json:"created_at"`
}

type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}
