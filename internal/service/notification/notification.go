// Package notification tells users about their bookings by email and SMS.
// With a publisher configured, notices travel over NATS and are delivered
// by the subscriber; otherwise they are delivered inline.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/pkg/email"
	"github.com/Alijeyrad/jyotish_backend/pkg/sms"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Kind string

const (
	KindConfirmed Kind = "confirmed"
	KindCancelled Kind = "cancelled"
)

// Event is the NATS payload. It carries everything delivery needs so the
// subscriber does not read the database.
type Event struct {
	Kind          Kind      `json:"kind"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Mobile        string    `json:"mobile"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	EmailOptOut   bool      `json:"email_opt_out,omitempty"`
	SMSOptOut     bool      `json:"sms_opt_out,omitempty"`
}

func newEvent(kind Kind, u model.User, a model.Appointment) Event {
	return Event{
		Kind:          kind,
		AppointmentID: a.ID,
		UserID:        u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Mobile:        u.Mobile,
		Start:         a.Date,
		End:           a.End,
		EmailOptOut:   u.EmailOptOut,
		SMSOptOut:     u.SMSOptOut,
	}
}

// Mailer is satisfied by *email.Client.
type Mailer interface {
	Enabled() bool
	AppName() string
	Send(ctx context.Context, m email.Message) error
}

// Texter is satisfied by *sms.Client.
type Texter interface {
	IsEnabled() bool
	SendAppointment(ctx context.Context, tpl sms.Template, mobile, name, date, clock string) error
}

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type Options struct {
	// Publisher routes notices through NATS when set.
	Publisher     Publisher
	SubjectPrefix string
	Location      *time.Location
	Logger        *slog.Logger
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Gateway struct {
	mailer Mailer
	texter Texter
	pub    Publisher
	prefix string
	loc    *time.Location
	log    *slog.Logger
}

func NewGateway(mailer Mailer, texter Texter, opts Options) *Gateway {
	g := &Gateway{
		mailer: mailer,
		texter: texter,
		pub:    opts.Publisher,
		prefix: opts.SubjectPrefix,
		loc:    opts.Location,
		log:    opts.Logger,
	}
	if g.prefix == "" {
		g.prefix = "jyotish"
	}
	if g.loc == nil {
		g.loc = time.UTC
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	g.log = g.log.With("component", "notification")
	return g
}

// Subject returns the NATS subject for kind and appointment id, e.g.
// jyotish.appointment.confirmed.<id>.
func (g *Gateway) Subject(kind Kind, id uuid.UUID) string {
	return fmt.Sprintf("%s.appointment.%s.%s", g.prefix, kind, id)
}

func (g *Gateway) SendConfirmation(ctx context.Context, u model.User, a model.Appointment) error {
	return g.emit(ctx, newEvent(KindConfirmed, u, a))
}

func (g *Gateway) SendCancellation(ctx context.Context, u model.User, a model.Appointment) error {
	return g.emit(ctx, newEvent(KindCancelled, u, a))
}

func (g *Gateway) emit(ctx context.Context, ev Event) error {
	if g.pub == nil {
		return g.Deliver(ctx, ev)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := g.pub.Publish(g.Subject(ev.Kind, ev.AppointmentID), data); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	return nil
}

// Deliver sends ev over every enabled channel the user has not opted out
// of. A failing channel does not stop the others.
func (g *Gateway) Deliver(ctx context.Context, ev Event) error {
	var (
		msg email.Message
		tpl sms.Template
	)
	data := email.AppointmentEmailData{
		Name:     ev.Name,
		Email:    ev.Email,
		Start:    ev.Start,
		End:      ev.End,
		Location: g.loc,
	}
	if g.mailer != nil {
		data.AppName = g.mailer.AppName()
	}

	switch ev.Kind {
	case KindConfirmed:
		msg, tpl = email.BuildAppointmentConfirmationEmail(data), sms.TemplateConfirmation
	case KindCancelled:
		msg, tpl = email.BuildAppointmentCancellationEmail(data), sms.TemplateCancellation
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}

	var errs []error
	if g.mailer != nil && g.mailer.Enabled() && ev.Email != "" && !ev.EmailOptOut {
		if err := g.mailer.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}
	if g.texter != nil && g.texter.IsEnabled() && ev.Mobile != "" && !ev.SMSOptOut {
		start := ev.Start.In(g.loc)
		err := g.texter.SendAppointment(ctx, tpl, ev.Mobile, ev.Name, start.Format(time.DateOnly), start.Format("15:04"))
		if err != nil {
			errs = append(errs, fmt.Errorf("sms: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Subscriber
// ---------------------------------------------------------------------------

const deliverTimeout = 30 * time.Second

// Subscribe delivers every appointment notice published under the prefix.
// Replicas share the work through a queue group.
func (g *Gateway) Subscribe(nc *nats.Conn) (*nats.Subscription, error) {
	return nc.QueueSubscribe(g.prefix+".appointment.>", "notification_worker", g.HandleMsg)
}

func (g *Gateway) HandleMsg(msg *nats.Msg) {
	var ev Event
	err := json.Unmarshal(msg.Data, &ev)
	if err == nil && ev.AppointmentID == uuid.Nil {
		err = ErrMalformedEvent
	}
	if err != nil {
		g.log.Warn("notification_worker: dropping message", "subject", msg.Subject, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	if err := g.Deliver(ctx, ev); err != nil {
		g.log.Error("notification_worker: delivery failed",
			"kind", ev.Kind,
			"appointment_id", ev.AppointmentID,
			"error", err,
		)
		return
	}
	g.log.Debug("notification_worker: delivered", "kind", ev.Kind, "appointment_id", ev.AppointmentID)
}
