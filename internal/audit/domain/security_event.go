package domain

import "time"

// SecurityEvent mirrors the outcome of a committed AuditRecord to the append-only
// security log.
type SecurityEvent struct {
	RequestID      string
	Actor          string
	Path           string
	Method         string
	CredentialName string
	Operation      OperationCode
	Success        bool
	StatusCode     int
	Timestamp      time.Time
}

// NewSecurityEvent derives the event for a committed record.
func NewSecurityEvent(record *AuditRecord) *SecurityEvent {
	return &SecurityEvent{
		RequestID:      record.RequestID,
		Actor:          record.Actor,
		Path:           record.Path,
		Method:         record.Method,
		CredentialName: record.CredentialName,
		Operation:      record.Operation,
		Success:        record.Success,
		StatusCode:     record.StatusCode,
		Timestamp:      record.CreatedAt,
	}
}
