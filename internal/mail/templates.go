package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/starford/folio/internal/models"
)

// DefaultPasswordResetTemplate is merged under the stored template.
var DefaultPasswordResetTemplate = models.EmailTemplate{
	Subject:         "Reset your password",
	Heading:         "Password reset",
	Message:         "We received a request to reset the password of your account. The link below is valid for one hour.",
	ButtonText:      "Reset password",
	PrimaryColor:    "#6366f1",
	BackgroundColor: "#f4f4f5",
	Footer:          "If you did not request a password reset you can ignore this email.",
}

// WithDefaults fills empty fields of t from DefaultPasswordResetTemplate.
func WithDefaults(t models.EmailTemplate) models.EmailTemplate {
	d := DefaultPasswordResetTemplate
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return models.EmailTemplate{
		Subject:         pick(t.Subject, d.Subject),
		Heading:         pick(t.Heading, d.Heading),
		Message:         pick(t.Message, d.Message),
		ButtonText:      pick(t.ButtonText, d.ButtonText),
		PrimaryColor:    pick(t.PrimaryColor, d.PrimaryColor),
		BackgroundColor: pick(t.BackgroundColor, d.BackgroundColor),
		LogoURL:         pick(t.LogoURL, d.LogoURL),
		Footer:          pick(t.Footer, d.Footer),
	}
}

var resetHTML = htmltemplate.Must(htmltemplate.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:24px;background:{{.T.BackgroundColor}};font-family:sans-serif">
  <div style="max-width:560px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px">
    {{if .T.LogoURL}}<img src="{{.T.LogoURL}}" alt="" style="max-height:48px;margin-bottom:16px">{{end}}
    <h1 style="color:{{.T.PrimaryColor}};font-size:22px">{{.T.Heading}}</h1>
    <p>Hello {{.Username}},</p>
    <p>{{.T.Message}}</p>
    <p><a href="{{.Link}}" style="display:inline-block;padding:12px 20px;background:{{.T.PrimaryColor}};color:#ffffff;text-decoration:none;border-radius:6px">{{.T.ButtonText}}</a></p>
    <p style="font-size:12px;color:#71717a">{{.T.Footer}}</p>
  </div>
</body>
</html>
`))

var resetText = texttemplate.Must(texttemplate.New("reset").Parse(`{{.T.Heading}}

Hello {{.Username}},

{{.T.Message}}

{{.T.ButtonText}}: {{.Link}}

{{.T.Footer}}
`))

var newMessageText = texttemplate.Must(texttemplate.New("message").Parse(`New message from {{.Name}} <{{.Email}}>
{{if .Company}}Company: {{.Company}}
{{end}}{{if .Phone}}Phone: {{.Phone}}
{{end}}{{if .ProjectType}}Project type: {{.ProjectType}}
{{end}}{{if .Timeline}}Timeline: {{.Timeline}}
{{end}}{{if .Budget}}Budget: {{.Budget}}
{{end}}{{if .ProjectPriority}}Priority: {{.ProjectPriority}}
{{end}}{{if .Requirements}}Requirements: {{.Requirements}}
{{end}}
{{.Message}}
`))

var newMessageHTML = htmltemplate.Must(htmltemplate.New("message").Parse(`<h2>New message from {{.Name}}</h2>
<p><a href="mailto:{{.Email}}">{{.Email}}</a></p>
<table>
{{if .Company}}<tr><td>Company</td><td>{{.Company}}</td></tr>{{end}}
{{if .Phone}}<tr><td>Phone</td><td>{{.Phone}}</td></tr>{{end}}
{{if .ProjectType}}<tr><td>Project type</td><td>{{.ProjectType}}</td></tr>{{end}}
{{if .Timeline}}<tr><td>Timeline</td><td>{{.Timeline}}</td></tr>{{end}}
{{if .Budget}}<tr><td>Budget</td><td>{{.Budget}}</td></tr>{{end}}
{{if .ProjectPriority}}<tr><td>Priority</td><td>{{.ProjectPriority}}</td></tr>{{end}}
{{if .Requirements}}<tr><td>Requirements</td><td>{{.Requirements}}</td></tr>{{end}}
</table>
<p style="white-space:pre-wrap">{{.Message}}</p>
`))

type resetData struct {
	T        models.EmailTemplate
	Username string
	Link     string
}

// RenderPasswordReset renders the reset email for u.
func RenderPasswordReset(u *models.User, link string) (subject, html, text string, err error) {
	data := resetData{T: WithDefaults(u.EmailTemplates.PasswordReset), Username: u.Username, Link: link}
	var h, t bytes.Buffer
	if err := resetHTML.Execute(&h, data); err != nil {
		return "", "", "", fmt.Errorf("mail: render reset html: %w", err)
	}
	if err := resetText.Execute(&t, data); err != nil {
		return "", "", "", fmt.Errorf("mail: render reset text: %w", err)
	}
	return data.T.Subject, h.String(), t.String(), nil
}

// RenderNewMessage renders the admin notification for msg.
func RenderNewMessage(msg *models.Message) (subject, html, text string, err error) {
	var h, t bytes.Buffer
	if err := newMessageHTML.Execute(&h, msg); err != nil {
		return "", "", "", fmt.Errorf("mail: render message html: %w", err)
	}
	if err := newMessageText.Execute(&t, msg); err != nil {
		return "", "", "", fmt.Errorf("mail: render message text: %w", err)
	}
	subject = "New portfolio message from " + msg.Name
	if msg.Subject != "" {
		subject += ": " + msg.Subject
	}
	return subject, h.String(), t.String(), nil
}
