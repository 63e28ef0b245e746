package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var otpEmailTemplate = template.Must(template.New("otp").Parse(`<html>
<body style="font-family: Arial, sans-serif; background: #1a1a2e; color: #fff; padding: 20px;">
  <div style="max-width: 500px; margin: 0 auto; background: #16213e; padding: 30px; border-radius: 10px;">
    <h1 style="color: #00d9ff; margin-bottom: 20px;">TurbineAI</h1>
    <h2 style="color: #fff;">Your Login Code</h2>
    <p style="font-size: 32px; font-weight: bold; color: #00d9ff; letter-spacing: 8px; text-align: center; padding: 20px; background: #0f3460; border-radius: 8px;">{{.Code}}</p>
    <p style="color: #aaa; margin-top: 20px;">This code expires in {{.Minutes}} minutes.</p>
    <p style="color: #666; font-size: 12px;">If you didn't request this code, please ignore this email.</p>
  </div>
</body>
</html>`))

const otpSubject = "TurbineAI - Your Login OTP"

// OTPMessage renders the login code mail for identity.
func OTPMessage(identity, code string, ttl time.Duration) (Message, error) {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	var html bytes.Buffer
	if err := otpEmailTemplate.Execute(&html, struct {
		Code    string
		Minutes int
	}{code, minutes}); err != nil {
		return Message{}, err
	}
	return Message{
		Channel: ChannelEmail,
		To:      identity,
		Subject: otpSubject,
		Text:    fmt.Sprintf("Your TurbineAI login code is %s. It expires in %d minutes.", code, minutes),
		HTML:    html.String(),
		Event:   "otp",
	}, nil
}
