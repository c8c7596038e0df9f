package smtp

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/validator"
)

var (
	fromHeaderRe  = regexp.MustCompile(`^"?([^"<]*?)"?\s*<([^<>]+@[^<>]+)>$`)
	scriptStyleRe = regexp.MustCompile(`(?i)<(script|style)[^>]*>[\s\S]*?</(script|style)>`)
	htmlTagRe     = regexp.MustCompile(`<[^>]*>`)
)

// InboundSMS is a text message the carrier delivered as an e-mail
type InboundSMS struct {
	Sender        string
	SenderAddress string
	Subject       string
	Body          string
}

// ParseMessage extracts the SMS sender and text from a bridged e-mail.
//
// The sender is the From display name, falling back to the local part of the
// From address. The body is the text part, then the HTML part with tags
// stripped, then the subject. Both are trimmed to what the message router accepts.
func ParseMessage(r io.Reader) (*InboundSMS, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	sms := &InboundSMS{
		Subject: strings.TrimSpace(env.GetHeader("Subject")),
	}

	var name, address string
	if from, err := env.AddressList("From"); err == nil && len(from) > 0 {
		name, address = from[0].Name, from[0].Address
	} else {
		name, address = parseFromHeader(env.GetHeader("From"))
	}
	sms.SenderAddress = address
	sms.Sender = senderName(name, address)

	body := strings.TrimSpace(env.Text)
	if body == "" && env.HTML != "" {
		body = strings.Join(strings.Fields(stripHTMLTags(env.HTML)), " ")
	}
	if body == "" {
		body = sms.Subject
	}
	sms.Body = truncateUTF8(body, services.MaxBodyLength)

	return sms, nil
}

// senderName picks the label shown for a sender
func senderName(displayName, address string) string {
	name := validator.SanitizeString(displayName, 0)
	if name == "" {
		if at := strings.LastIndex(address, "@"); at > 0 {
			name = validator.SanitizeString(address[:at], 0)
		}
	}
	return truncateUTF8(name, services.MaxSenderNameLength)
}

// parseFromHeader extracts name and email from a From header
func parseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	// Pattern: "Name" <email@example.com> or Name <email@example.com>
	matches := fromHeaderRe.FindStringSubmatch(from)

	if len(matches) == 3 {
		name = strings.TrimSpace(matches[1])
		email = strings.TrimSpace(matches[2])
	} else {
		// Fallback: treat entire string as email
		email = strings.Trim(from, "<>")
	}

	return name, email
}

// stripHTMLTags removes HTML tags from a string
func stripHTMLTags(html string) string {
	html = scriptStyleRe.ReplaceAllString(html, "")
	html = htmlTagRe.ReplaceAllString(html, " ")

	// Decode common HTML entities
	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&lt;", "<")
	html = strings.ReplaceAll(html, "&gt;", ">")
	html = strings.ReplaceAll(html, "&quot;", `"`)
	html = strings.ReplaceAll(html, "&#39;", "'")
	html = strings.ReplaceAll(html, "&amp;", "&")

	return html
}

// truncateUTF8 cuts s to at most maxBytes without splitting a rune
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}
