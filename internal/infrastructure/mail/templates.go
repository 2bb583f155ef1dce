package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

const layout = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{template "subject" .}}</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		{{template "body" .}}
		<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
		<p style="color: #999; font-size: 12px;">CloudScribe. This is an automated message, please do not reply.</p>
	</div>
</body>
</html>`

var bodies = map[string]struct{ subject, body string }{
	ports.MailVerification: {
		subject: `Verify your email address`,
		body: `<h1 style="color: #4CAF50;">Welcome to CloudScribe, {{.Username}}!</h1>
		<p>Please verify your email address by clicking the link below:</p>
		<p><a href="{{.Link}}">Verify Email</a></p>
		<p style="word-break: break-all; color: #666;">{{.Link}}</p>`,
	},
	ports.MailPasswordReset: {
		subject: `Reset your password`,
		body: `<h1 style="color: #2196F3;">Reset Your Password</h1>
		<p>Hello {{.Username}}, we received a request to reset your password.</p>
		<p><a href="{{.Link}}">Reset Password</a></p>
		<p>This link will expire in 1 hour. If you didn't request a reset, ignore this email.</p>`,
	},
	ports.MailContributionApproved: {
		subject: `Your contribution has been approved`,
		body: `<h1>Great news, {{.Username}}!</h1>
		<p>Your {{.Type}} "{{.Title}}" has been approved and is now visible to everyone.</p>`,
	},
	ports.MailWeeklyDigest: {
		subject: `Your weekly CloudScribe digest`,
		body: `<h1>Your week on CloudScribe</h1>
		<p>Hello {{.Username}}, here is your activity since {{.Since}}:</p>
		<ul>
			<li>Contributions: {{.Contributions}}</li>
			<li>Points: {{.Points}}</li>
			<li>Current streak: {{.Streak}} days</li>
		</ul>`,
	},
}

// Renderer turns a template name and data into a subject and HTML body.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(bodies))}
	for name, b := range bodies {
		t, err := template.New(name).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := t.New("subject").Parse(b.subject); err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", name, err)
		}
		if _, err := t.New("body").Parse(b.body); err != nil {
			return nil, fmt.Errorf("parse %s body: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(name string, data map[string]any) (subject, body string, err error) {
	t, ok := r.templates[name]
	if !ok {
		return "", "", domain.ErrUnknownTemplate.WithMessage("Unknown email template " + name)
	}
	var sb, bb bytes.Buffer
	if err := t.ExecuteTemplate(&sb, "subject", data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := t.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), bb.String(), nil
}
