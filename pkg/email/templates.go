package email

import (
	"fmt"
	"html"
	"time"
)

// AppointmentEmailData is what the appointment templates render.
type AppointmentEmailData struct {
	AppName  string
	Name     string
	Email    string
	Start    time.Time
	End      time.Time
	Location *time.Location
}

func (d AppointmentEmailData) normalized() AppointmentEmailData {
	if d.AppName == "" {
		d.AppName = "Jyotish"
	}
	if d.Name == "" {
		d.Name = "there"
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	return d
}

func (d AppointmentEmailData) when() (day, from, to string) {
	start := d.Start.In(d.Location)
	end := d.End.In(d.Location)
	return start.Format("Monday, 02 January 2006"), start.Format("15:04"), end.Format("15:04 MST")
}

// BuildAppointmentConfirmationEmail renders the booking confirmation.
func BuildAppointmentConfirmationEmail(data AppointmentEmailData) Message {
	data = data.normalized()
	day, from, to := data.when()

	subject := fmt.Sprintf("Your %s consultation is confirmed for %s", data.AppName, day)

	textBody := fmt.Sprintf(`Hi %s,

Your consultation is confirmed.

Date: %s
Time: %s - %s

If you can't make it, please cancel from your dashboard so the slot can go to someone else.

Thanks,
The %s Team`,
		data.Name, day, from, to, data.AppName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #b45309;">Hi %s,</h2>
    <p>Your consultation is confirmed.</p>
    <table style="margin: 20px 0; background-color: #fef3c7; padding: 15px; border-radius: 6px;">
        <tr><td style="padding-right: 12px;"><strong>Date</strong></td><td>%s</td></tr>
        <tr><td style="padding-right: 12px;"><strong>Time</strong></td><td>%s - %s</td></tr>
    </table>
    <p>If you can't make it, please cancel from your dashboard so the slot can go to someone else.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		html.EscapeString(data.Name), day, from, to, html.EscapeString(data.AppName))

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildAppointmentCancellationEmail renders the cancellation notice.
func BuildAppointmentCancellationEmail(data AppointmentEmailData) Message {
	data = data.normalized()
	day, from, to := data.when()

	subject := fmt.Sprintf("Your %s consultation on %s was cancelled", data.AppName, day)

	textBody := fmt.Sprintf(`Hi %s,

Your consultation on %s (%s - %s) has been cancelled.

You can book a new time whenever the booking window is open.

Thanks,
The %s Team`,
		data.Name, day, from, to, data.AppName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #b45309;">Hi %s,</h2>
    <p>Your consultation on <strong>%s</strong> (%s - %s) has been cancelled.</p>
    <p>You can book a new time whenever the booking window is open.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		html.EscapeString(data.Name), day, from, to, html.EscapeString(data.AppName))

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
