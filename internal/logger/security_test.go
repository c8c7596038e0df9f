package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	return logEntry
}

func TestNewSecurityLogger(t *testing.T) {
	logger := NewSecurityLogger()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.logger)
}

func TestSecurityLogger_AuthFailure_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	logger.AuthFailure("192.168.1.1", "/api/virtual-numbers", "invalid_key")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, "auth_failure", logEntry["event_type"])
	assert.Equal(t, "192.168.1.1", logEntry["ip"])
	assert.Equal(t, "/api/virtual-numbers", logEntry["path"])
	assert.Equal(t, "invalid_key", logEntry["reason"])
	assert.Contains(t, logEntry, "timestamp")
}

func TestSecurityLogger_RateLimitExceeded_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	logger.RateLimitExceeded("192.168.1.1", "/api/inbound")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, "rate_limit", logEntry["event_type"])
	assert.Equal(t, "/api/inbound", logEntry["path"])
}

func TestSecurityLogger_InvalidOrigin(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	logger.InvalidOrigin("192.168.1.1", "http://malicious.com")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, "invalid_origin", logEntry["event_type"])
	assert.Equal(t, "http://malicious.com", logEntry["origin"])
}

func TestSecurityLogger_ForeignRecipient(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	logger.ForeignRecipient("10.0.0.1:5000", "9876543210@elsewhere.test")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, "foreign_recipient", logEntry["event_type"])
	assert.Equal(t, "9876543210@elsewhere.test", logEntry["recipient"])
}

func TestSecurityLogger_SensitiveDataNotLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	details := map[string]string{
		"sender":  "AMAZON",
		"message": "Your OTP is 482913",
		"api_key": "sk-12345",
		"path":    "/api/inbound",
	}

	logger.SecurityEvent("test_event", "192.168.1.1", details)

	output := buf.String()
	assert.NotContains(t, output, "482913")
	assert.NotContains(t, output, "sk-12345")
	assert.Contains(t, output, "AMAZON")
	assert.Contains(t, output, "/api/inbound")
}

func TestSecurityLogger_GetLogger(t *testing.T) {
	base := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	assert.Same(t, base, FromLogger(base).GetLogger())
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"password", true},
		{"api_key", true},
		{"token", true},
		{"authorization", true},
		{"body", true},
		{"message", true},
		{"sender", false},
		{"virtual_number", false},
		{"path", false},
		{"ip", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSensitiveKey(tt.key))
		})
	}
}

func TestSecurityLogger_InfoAndWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	logger.Info("test message", slog.String("key", "value"))
	logger.Warn("careful", slog.String("hint", "slow down"))

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "slow down")
}
