package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/lumberjack/v2"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
)

const (
	cefVendor  = "allisson"
	cefProduct = "credstore"

	cefSeveritySuccess = 0
	cefSeverityFailure = 5
)

var (
	cefHeaderEscaper    = strings.NewReplacer(`\`, `\\`, `|`, `\|`, "\r", `\r`, "\n", `\n`)
	cefExtensionEscaper = strings.NewReplacer(`\`, `\\`, `=`, `\=`, "\r", `\r`, "\n", `\n`)
)

// FileConfig configures the rotating security event log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// CEFLogger writes one CEF line per security event.
type CEFLogger struct {
	mu      sync.Mutex
	w       io.Writer
	version string
}

// NewCEFLogger creates a CEFLogger writing to w.
func NewCEFLogger(w io.Writer, version string) *CEFLogger {
	return &CEFLogger{w: w, version: version}
}

// NewFileCEFLogger creates a CEFLogger backed by a size-rotated file. The returned
// closer releases the file.
func NewFileCEFLogger(cfg FileConfig, version string) (*CEFLogger, io.Closer) {
	file := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return NewCEFLogger(file, version), file
}

// Log appends the event.
func (l *CEFLogger) Log(_ context.Context, event *auditDomain.SecurityEvent) error {
	line := FormatCEF(event, l.version) + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := io.WriteString(l.w, line); err != nil {
		return fmt.Errorf("failed to write security event: %w", err)
	}
	return nil
}

// FormatCEF renders the event as a CEF:0 line without trailing newline.
func FormatCEF(event *auditDomain.SecurityEvent, version string) string {
	severity, outcome := cefSeveritySuccess, "success"
	if !event.Success {
		severity, outcome = cefSeverityFailure, "failure"
	}

	header := []string{
		"CEF:0",
		cefHeaderEscaper.Replace(cefVendor),
		cefHeaderEscaper.Replace(cefProduct),
		cefHeaderEscaper.Replace(version),
		cefHeaderEscaper.Replace(string(event.Operation)),
		cefHeaderEscaper.Replace(event.Method + " " + event.Path),
		strconv.Itoa(severity),
	}

	extension := []string{
		"rt=" + strconv.FormatInt(event.Timestamp.UnixMilli(), 10),
		"suser=" + cefExtensionEscaper.Replace(event.Actor),
		"request=" + cefExtensionEscaper.Replace(event.Path),
		"requestMethod=" + cefExtensionEscaper.Replace(event.Method),
		"cs1Label=credentialName",
		"cs1=" + cefExtensionEscaper.Replace(event.CredentialName),
		"cs2Label=requestId",
		"cs2=" + cefExtensionEscaper.Replace(event.RequestID),
		"cn1Label=statusCode",
		"cn1=" + strconv.Itoa(event.StatusCode),
		"outcome=" + outcome,
	}

	return strings.Join(header, "|") + "|" + strings.Join(extension, " ")
}

// slogSecurityEventLogger emits CEF lines through the application logger.
type slogSecurityEventLogger struct {
	logger  *slog.Logger
	version string
}

// NewSlogSecurityEventLogger creates a SecurityEventLogger used when no security log
// file is configured.
func NewSlogSecurityEventLogger(logger *slog.Logger, version string) SecurityEventLogger {
	return &slogSecurityEventLogger{logger: logger, version: version}
}

func (s *slogSecurityEventLogger) Log(ctx context.Context, event *auditDomain.SecurityEvent) error {
	s.logger.InfoContext(ctx, "security event",
		slog.String("cef", FormatCEF(event, s.version)),
		slog.Bool("success", event.Success),
	)
	return nil
}
