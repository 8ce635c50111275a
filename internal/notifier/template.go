package notifier

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// otpEmailData feeds the recovery code templates.
type otpEmailData struct {
	FirstName string
	Code      string
	Minutes   int
}

var otpTextTemplate = texttemplate.Must(texttemplate.New("otp_text").Parse(
	`Hi {{.FirstName}},

Your password recovery code is: {{.Code}}

The code is valid for {{.Minutes}} minutes. If you did not request a
password reset, you can safely ignore this message.
`))

var otpHTMLTemplate = htmltemplate.Must(htmltemplate.New("otp_html").Parse(
	`<html>
  <body>
    <p>Hi {{.FirstName}},</p>
    <p>Your password recovery code is:</p>
    <p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
    <p>The code is valid for {{.Minutes}} minutes. If you did not request a
    password reset, you can safely ignore this message.</p>
  </body>
</html>
`))

// NewOtpEmail renders the password recovery email for the given recipient.
func NewOtpEmail(to, firstName, code string, validity time.Duration) (*Email, error) {
	if firstName == "" {
		firstName = "there"
	}
	data := otpEmailData{
		FirstName: firstName,
		Code:      code,
		Minutes:   int(validity.Minutes()),
	}

	var text strings.Builder
	if err := otpTextTemplate.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render otp text body: %w", err)
	}

	var html strings.Builder
	if err := otpHTMLTemplate.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render otp html body: %w", err)
	}

	return &Email{
		To:       to,
		Subject:  "Your password recovery code",
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
