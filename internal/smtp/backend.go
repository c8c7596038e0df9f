// Package smtp bridges carriers that deliver inbound SMS as e-mail to
// <virtual-number>@<bridge-domain> into the message router.
package smtp

import (
	"crypto/tls"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/logger"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
)

// Security limits
const (
	DefaultMaxMessageSize = 256 * 1024 // bridged SMS are tiny
	DefaultMaxRecipients  = 10
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000
	DefaultIngestTimeout  = 10 * time.Second
)

// Backend implements the go-smtp Backend interface
type Backend struct {
	router        services.MessageRouter
	domain        string
	ingestTimeout time.Duration
	logger        *slog.Logger
	secLog        *logger.SecurityLogger
}

// BackendConfig holds configuration for the SMTP backend
type BackendConfig struct {
	Router        services.MessageRouter
	Domain        string // recipients outside this domain are accepted but never routed
	IngestTimeout time.Duration
	Logger        *slog.Logger
}

// NewBackend creates a new SMTP backend
func NewBackend(cfg *BackendConfig) *Backend {
	b := &Backend{
		router:        cfg.Router,
		domain:        strings.ToLower(cfg.Domain),
		ingestTimeout: cfg.IngestTimeout,
		logger:        cfg.Logger,
	}
	if b.ingestTimeout <= 0 {
		b.ingestTimeout = DefaultIngestTimeout
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.secLog = logger.FromLogger(b.logger)
	return b
}

// NewSession creates a new SMTP session
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	remoteAddr := c.Conn().RemoteAddr().String()
	b.logger.Debug("new SMTP connection", slog.String("remote_addr", remoteAddr))
	return NewSession(b, remoteAddr), nil
}

// ServerConfig holds security configuration for the SMTP server
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowInsecure  bool
	TLSConfig      *tls.Config
}

// NewSecureServer creates a new SMTP server with security settings
func NewSecureServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain

	s.MaxMessageBytes = DefaultMaxMessageSize
	if cfg.MaxMessageSize > 0 {
		s.MaxMessageBytes = cfg.MaxMessageSize
	}

	s.MaxRecipients = DefaultMaxRecipients
	if cfg.MaxRecipients > 0 {
		s.MaxRecipients = cfg.MaxRecipients
	}

	s.ReadTimeout = DefaultReadTimeout
	if cfg.ReadTimeout > 0 {
		s.ReadTimeout = cfg.ReadTimeout
	}

	s.WriteTimeout = DefaultWriteTimeout
	if cfg.WriteTimeout > 0 {
		s.WriteTimeout = cfg.WriteTimeout
	}

	// Disable insecure authentication by default
	s.AllowInsecureAuth = cfg.AllowInsecure

	if cfg.TLSConfig != nil {
		s.TLSConfig = cfg.TLSConfig
	}

	// Set max line length to prevent buffer overflow attacks
	s.MaxLineLength = DefaultMaxLineLength

	return s
}
