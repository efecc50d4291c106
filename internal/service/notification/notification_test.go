package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/pkg/email"
	"github.com/Alijeyrad/jyotish_backend/pkg/sms"
)

type fakeMailer struct {
	enabled bool
	err     error
	sent    []email.Message
}

func (m *fakeMailer) Enabled() bool   { return m.enabled }
func (m *fakeMailer) AppName() string { return "Jyotish" }
func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

type smsCall struct {
	tpl                       sms.Template
	mobile, name, date, clock string
}

type fakeTexter struct {
	calls []smsCall
}

func (f *fakeTexter) IsEnabled() bool { return true }
func (f *fakeTexter) SendAppointment(_ context.Context, tpl sms.Template, mobile, name, date, clock string) error {
	f.calls = append(f.calls, smsCall{tpl, mobile, name, date, clock})
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func fixtures() (model.User, model.Appointment) {
	u := model.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", Mobile: "+919876543210"}
	start := time.Date(2025, 3, 3, 3, 30, 0, 0, time.UTC)
	a := model.Appointment{ID: uuid.New(), UserID: u.ID, Date: start, End: start.Add(15 * time.Minute)}
	return u, a
}

func TestSendConfirmation_Direct(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	mailer := &fakeMailer{enabled: true}
	texter := &fakeTexter{}
	g := NewGateway(mailer, texter, Options{Location: ist})

	u, a := fixtures()
	require.NoError(t, g.SendConfirmation(context.Background(), u, a))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"asha@example.com"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "confirmed")

	require.Len(t, texter.calls, 1)
	assert.Equal(t, smsCall{sms.TemplateConfirmation, "+919876543210", "Asha", "2025-03-03", "09:00"}, texter.calls[0])
}

func TestDeliver_CollectsChannelErrors(t *testing.T) {
	mailer := &fakeMailer{enabled: true, err: errors.New("smtp down")}
	texter := &fakeTexter{}
	g := NewGateway(mailer, texter, Options{})

	u, a := fixtures()
	err := g.SendCancellation(context.Background(), u, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	// sms still went out
	require.Len(t, texter.calls, 1)
	assert.Equal(t, sms.TemplateCancellation, texter.calls[0].tpl)
}

func TestDeliver_DisabledMailerSkipped(t *testing.T) {
	mailer := &fakeMailer{enabled: false}
	g := NewGateway(mailer, nil, Options{})
	u, a := fixtures()
	require.NoError(t, g.SendConfirmation(context.Background(), u, a))
	assert.Empty(t, mailer.sent)
}

func TestDeliver_UnknownKind(t *testing.T) {
	g := NewGateway(nil, nil, Options{})
	err := g.Deliver(context.Background(), Event{Kind: "rescheduled", AppointmentID: uuid.New()})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSendConfirmation_Publishes(t *testing.T) {
	pub := &fakePublisher{}
	mailer := &fakeMailer{enabled: true}
	g := NewGateway(mailer, nil, Options{Publisher: pub, SubjectPrefix: "jyotish"})

	u, a := fixtures()
	require.NoError(t, g.SendConfirmation(context.Background(), u, a))
	assert.Empty(t, mailer.sent, "publishing must not deliver inline")

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "jyotish.appointment.confirmed."+a.ID.String(), pub.subjects[0])

	var ev Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &ev))
	assert.Equal(t, KindConfirmed, ev.Kind)
	assert.Equal(t, a.ID, ev.AppointmentID)
	assert.Equal(t, u.Email, ev.Email)

	// the subscriber side delivers what was published
	g.HandleMsg(&nats.Msg{Subject: pub.subjects[0], Data: pub.payloads[0]})
	assert.Len(t, mailer.sent, 1)
}

func TestHandleMsg_DropsMalformed(t *testing.T) {
	var buf bytes.Buffer
	mailer := &fakeMailer{enabled: true}
	g := NewGateway(mailer, nil, Options{Logger: slog.New(slog.NewTextHandler(&buf, nil))})

	g.HandleMsg(&nats.Msg{Subject: "jyotish.appointment.confirmed.x", Data: []byte("{not json")})
	assert.Empty(t, mailer.sent)
	assert.Contains(t, buf.String(), "dropping message")
	assert.Contains(t, buf.String(), "invalid character", "the decode error is logged")

	buf.Reset()
	g.HandleMsg(&nats.Msg{Subject: "jyotish.appointment.confirmed.x", Data: []byte(`{"kind":"confirmed"}`)})
	assert.Empty(t, mailer.sent)
	assert.Contains(t, buf.String(), ErrMalformedEvent.Error())
}

func TestDeliver_RespectsOptOut(t *testing.T) {
	mailer := &fakeMailer{enabled: true}
	texter := &fakeTexter{}
	g := NewGateway(mailer, texter, Options{})

	u, a := fixtures()
	u.SMSOptOut = true
	require.NoError(t, g.SendConfirmation(context.Background(), u, a))
	assert.Len(t, mailer.sent, 1)
	assert.Empty(t, texter.calls)

	u.SMSOptOut, u.EmailOptOut = false, true
	require.NoError(t, g.SendCancellation(context.Background(), u, a))
	assert.Len(t, mailer.sent, 1)
	assert.Len(t, texter.calls, 1)
}

func TestSendConfirmation_PublishedEventKeepsOptOut(t *testing.T) {
	pub := &fakePublisher{}
	mailer := &fakeMailer{enabled: true}
	texter := &fakeTexter{}
	g := NewGateway(mailer, texter, Options{Publisher: pub})

	u, a := fixtures()
	u.EmailOptOut = true
	require.NoError(t, g.SendConfirmation(context.Background(), u, a))
	require.Len(t, pub.payloads, 1)

	g.HandleMsg(&nats.Msg{Subject: pub.subjects[0], Data: pub.payloads[0]})
	assert.Empty(t, mailer.sent)
	assert.Len(t, texter.calls, 1)
}
