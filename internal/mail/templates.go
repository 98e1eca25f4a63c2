package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"portfolio/internal/domain"
)

const (
	autoReplySubject = "Thank you for contacting me!"
	sentAtLayout     = "January 2, 2006 at 3:04 PM MST"
)

var htmlFuncs = template.FuncMap{"nl2br": nl2br}

var ownerHTML = template.Must(template.New("owner").Funcs(htmlFuncs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <h2 style="color: #3b82f6;">New Contact Form Submission</h2>
    <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <p><strong>Name:</strong> {{.Name}}</p>
        <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
        <p><strong>Subject:</strong> {{.Subject}}</p>
        <p><strong>Message:</strong></p>
        <div style="background: white; padding: 15px; border-radius: 4px; border-left: 4px solid #3b82f6;">
            {{nl2br .Message}}
        </div>
    </div>
    <p style="color: #6b7280; font-size: 14px;">
        Sent from your portfolio website at {{.SentAt}}
    </p>
</div>`))

var ownerText = texttemplate.Must(texttemplate.New("owner").Parse(`New Contact Form Submission

Name: {{.Name}}
Email: {{.Email}}
Subject: {{.Subject}}

Message:
{{.Message}}

Sent from your portfolio website at {{.SentAt}}
`))

var replyHTML = template.Must(template.New("reply").Funcs(htmlFuncs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <h2 style="color: #3b82f6;">Thank You for Your Message!</h2>
    <p>Hi {{.Name}},</p>
    <p>Thank you for reaching out through my portfolio website. I've received your message and will get back to you as soon as possible.</p>
    <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <h3 style="margin-top: 0;">Your Message:</h3>
        <p><strong>Subject:</strong> {{.Subject}}</p>
        <div style="background: white; padding: 15px; border-radius: 4px;">
            {{nl2br .Message}}
        </div>
    </div>
    <p>Best regards,{{if .OwnerName}}<br>{{.OwnerName}}{{end}}</p>
    <p style="color: #6b7280; font-size: 14px;">
        This is an automated response. Please do not reply to this email.
    </p>
</div>`))

var replyText = texttemplate.Must(texttemplate.New("reply").Parse(`Hi {{.Name}},

Thank you for reaching out through my portfolio website. I've received your message and will get back to you as soon as possible.

Your message:
Subject: {{.Subject}}

{{.Message}}

Best regards,{{if .OwnerName}}
{{.OwnerName}}{{end}}

This is an automated response. Please do not reply to this email.
`))

type templateData struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	SentAt    string
	OwnerName string
}

// OwnerNotification builds the message that tells the site owner about a new
// submission.
func OwnerNotification(to string, c *domain.Contact, sentAt time.Time) (Message, error) {
	data := templateData{
		Name:    c.Name,
		Email:   c.Email,
		Subject: c.Subject,
		Message: normalizeNewlines(c.Message),
		SentAt:  sentAt.Format(sentAtLayout),
	}
	return render(to, "Portfolio Contact: "+c.Subject, ownerHTML, ownerText, data)
}

// AutoReply builds the acknowledgement sent back to the visitor.
func AutoReply(c *domain.Contact, ownerName string) (Message, error) {
	data := templateData{
		Name:      c.Name,
		Subject:   c.Subject,
		Message:   normalizeNewlines(c.Message),
		OwnerName: ownerName,
	}
	return render(c.Email, autoReplySubject, replyHTML, replyText, data)
}

func render(to, subject string, html *template.Template, text *texttemplate.Template, data templateData) (Message, error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := html.Execute(&htmlBuf, data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", html.Name(), err)
	}
	if err := text.Execute(&textBuf, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", text.Name(), err)
	}
	return Message{
		To:      to,
		Subject: subject,
		HTML:    htmlBuf.String(),
		Text:    textBuf.String(),
	}, nil
}

// nl2br escapes s and turns each newline into a <br>.
func nl2br(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
