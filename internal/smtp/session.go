package smtp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/emersion/go-smtp"
	apperrors "github.com/welldanyogia/webrana-proxynum-backend/internal/errors"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/validator"
)

var (
	errInvalidRecipient = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 1},
		Message:      "Invalid recipient address",
	}
	errNoRecipients = &smtp.SMTPError{
		Code:         503,
		EnhancedCode: smtp.EnhancedCode{5, 5, 1},
		Message:      "No recipients specified",
	}
	errUnparsable = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 6, 0},
		Message:      "Failed to parse message",
	}
	errTemporary = &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      "Temporary error",
	}
)

// Session implements the go-smtp Session interface
type Session struct {
	backend    *Backend
	remoteAddr string
	from       string
	numbers    []string
	foreign    int
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend, remoteAddr string) *Session {
	return &Session{
		backend:    backend,
		remoteAddr: remoteAddr,
		numbers:    make([]string, 0),
	}
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	return nil
}

// Rcpt handles the RCPT TO command. Every well-formed recipient is accepted
// so the bridge never reveals which numbers exist.
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	localPart, domain, err := parseAddress(to)
	if err != nil {
		return errInvalidRecipient
	}

	if domain != s.backend.domain {
		s.backend.secLog.ForeignRecipient(s.remoteAddr, to)
		s.foreign++
		return nil
	}

	if err := validator.ValidateNumber(localPart); err != nil {
		return errInvalidRecipient
	}

	if !slices.Contains(s.numbers, localPart) {
		s.numbers = append(s.numbers, localPart)
	}
	return nil
}

// Data handles the DATA command and hands the message to the router once per recipient number
func (s *Session) Data(r io.Reader) error {
	if len(s.numbers) == 0 && s.foreign == 0 {
		return errNoRecipients
	}

	sms, err := ParseMessage(r)
	if err != nil {
		s.backend.logger.Warn("failed to parse bridged message", slog.Any("error", err))
		return errUnparsable
	}
	if sms.Sender == "" {
		sms.Sender = senderName("", strings.Trim(s.from, "<>"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.backend.ingestTimeout)
	defer cancel()

	// A retry re-delivers to every recipient, so 451 is only safe while nothing was stored.
	var failed []string
	stored := 0
	for _, number := range s.numbers {
		msg, err := s.backend.router.Ingest(ctx, number, sms.Sender, sms.Body)
		switch {
		case apperrors.IsValidation(err):
			s.backend.logger.Debug("bridged message rejected", slog.Any("error", err))
		case err != nil:
			s.backend.logger.Error("failed to ingest bridged message",
				slog.String("recipient", number),
				slog.Any("error", err))
			failed = append(failed, number)
		case msg != nil:
			stored++
		}
	}
	if len(failed) > 0 {
		if stored == 0 {
			return errTemporary
		}
		s.backend.logger.Warn("bridged message partially delivered",
			slog.Int("stored", stored),
			slog.Any("failed_recipients", failed))
	}

	s.backend.logger.Info("bridged message received",
		slog.Int("recipients", len(s.numbers)),
		slog.Int("foreign_recipients", s.foreign))
	return nil
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.numbers = make([]string, 0)
	s.foreign = 0
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}

// parseAddress splits an address into a lower-cased local part and domain
func parseAddress(address string) (localPart, domain string, err error) {
	address = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(address, "<"), ">"))

	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid address: %s", address)
	}

	localPart = strings.ToLower(parts[0])
	domain = strings.ToLower(parts[1])

	if localPart == "" || domain == "" {
		return "", "", fmt.Errorf("invalid address: %s", address)
	}

	return localPart, domain, nil
}
