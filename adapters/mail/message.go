// Package mail delivers verification and password-reset tokens.
package mail

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/lborres/pinto/core"
)

const (
	KindVerification = "verification"
	KindReset        = "password_reset"
)

// Message is a rendered email, independent of the delivery provider.
type Message struct {
	Kind    string
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
	Link    string
}

// Links builds the client-side URLs that carry tokens.
type Links struct {
	AppURL string
}

func (l Links) Verify(token string) string {
	return l.build("verify", token)
}

func (l Links) Reset(token string) string {
	return l.build("reset", token)
}

func (l Links) build(mode, token string) string {
	q := url.Values{}
	q.Set("mode", mode)
	q.Set("token", token)
	return strings.TrimRight(l.AppURL, "/") + "/auth?" + q.Encode()
}

var (
	verificationHTML = template.Must(template.New("verification").Parse(
		`<p>Hi {{.Name}},</p><p><a href="{{.Link}}">Confirm your email address</a></p>`))
	resetHTML = template.Must(template.New("reset").Parse(
		`<p>Hi {{.Name}},</p><p><a href="{{.Link}}">Reset your password</a> within the next hour.</p>` +
			`<p>If you did not ask for this, ignore this email.</p>`))
)

type htmlData struct {
	Name string
	Link string
}

// renderHTML escapes the user-supplied name and the link for their context.
// Writing to a strings.Builder cannot fail, so an error here is a template bug.
func renderHTML(t *template.Template, name, link string) string {
	var b strings.Builder
	if err := t.Execute(&b, htmlData{Name: name, Link: link}); err != nil {
		panic(fmt.Sprintf("mail: render %s: %v", t.Name(), err))
	}
	return b.String()
}

func displayName(u *core.User) string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Username
}

// VerificationMessage renders the email sent after registration or resend.
func VerificationMessage(links Links, to *core.User, token string) Message {
	link := links.Verify(token)
	name := displayName(to)
	return Message{
		Kind:    KindVerification,
		To:      to.Email,
		ToName:  name,
		Subject: "Verify your email address",
		Text:    fmt.Sprintf("Hi %s,\n\nConfirm your email address by opening this link:\n%s\n", name, link),
		HTML:    renderHTML(verificationHTML, name, link),
		Link:    link,
	}
}

// ResetMessage renders the password-reset email. The link is valid for an hour.
func ResetMessage(links Links, to *core.User, token string) Message {
	link := links.Reset(token)
	name := displayName(to)
	return Message{
		Kind:    KindReset,
		To:      to.Email,
		ToName:  name,
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Hi %s,\n\nReset your password within the next hour:\n%s\n\nIf you did not ask for this, ignore this email.\n", name, link),
		HTML:    renderHTML(resetHTML, name, link),
		Link:    link,
	}
}
