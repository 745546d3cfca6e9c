package sideeffect

import (
	"bytes"
	"html/template"
	"time"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <p>Hi {{.RecipientName}},</p>
  <p>Your mentorship session with {{.CounterpartName}} is confirmed.</p>
  <table>
    <tr><td><strong>When</strong></td><td>{{.Start}} to {{.End}} ({{.TimeZone}})</td></tr>
    <tr><td><strong>Booking</strong></td><td>{{.BookingID}}</td></tr>
    <tr><td><strong>Amount</strong></td><td>{{.Amount}}</td></tr>
  </table>
  {{if .MeetingLink}}<p>Join here: <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>
  {{else}}<p>A meeting link will be shared separately.</p>{{end}}
</body>
</html>`))

type confirmationData struct {
	RecipientName   string
	CounterpartName string
	Start           string
	End             string
	TimeZone        string
	BookingID       string
	Amount          string
	MeetingLink     string
}

const sessionTimeLayout = "Mon, 02 Jan 2006 15:04"

func renderConfirmation(d confirmationData) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatSessionTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(sessionTimeLayout)
}
