// Package domain defines the audit trail of credential operations: the transactional
// AuditRecord, its event annotations and the SecurityEvent mirrored to the external log.
package domain

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// OperationCode names the kind of operation an audit record or event describes.
type OperationCode string

const (
	CredentialAccess OperationCode = "credential_access"
	CredentialFind   OperationCode = "credential_find"
	CredentialUpdate OperationCode = "credential_update"
	CredentialDelete OperationCode = "credential_delete"
	ACLAccess        OperationCode = "acl_access"
	ACLUpdate        OperationCode = "acl_update"
	ACLDelete        OperationCode = "acl_delete"
)

// EventParameters annotates an audit record with one credential touched by the
// operation.
type EventParameters struct {
	Operation      OperationCode `json:"operation"`
	CredentialName string        `json:"credential_name"`
}

// AuditRecord is written once per audited operation attempt, in the same transaction as
// the operation when it succeeds. Records are never updated.
type AuditRecord struct {
	ID             uuid.UUID
	RequestID      string
	CredentialName string
	Operation      OperationCode
	Actor          string
	Path           string
	Method         string
	Success        bool
	StatusCode     int
	Events         []EventParameters
	Signature      []byte
	CreatedAt      time.Time
}

// Result is the outcome of an audited action: a status code and the body to return.
type Result struct {
	StatusCode int
	Body       any
}

// Succeeded reports whether the status code is in the 2xx range.
func (r *Result) Succeeded() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// EventRecorder accumulates event annotations for the audit record being built.
type EventRecorder interface {
	AddEvent(operation OperationCode, credentialName string)
}

// RecordBuilder collects what an action learns about itself while it runs: the
// credential it targets and the annotations to persist with its audit record.
type RecordBuilder struct {
	info           RequestInfo
	operation      OperationCode
	credentialName string
	events         []EventParameters
}

// NewRecordBuilder starts a record for operation using the request information.
func NewRecordBuilder(info RequestInfo, operation OperationCode) *RecordBuilder {
	return &RecordBuilder{info: info, operation: operation}
}

// SetCredentialName sets the credential the record refers to.
func (b *RecordBuilder) SetCredentialName(name string) {
	b.credentialName = name
}

// AddEvent appends an annotation.
func (b *RecordBuilder) AddEvent(operation OperationCode, credentialName string) {
	b.events = append(b.events, EventParameters{Operation: operation, CredentialName: credentialName})
}

// Build creates the audit record. Unknown fields stay empty.
func (b *RecordBuilder) Build(success bool, statusCode int, createdAt time.Time) *AuditRecord {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &AuditRecord{
		ID:             id,
		RequestID:      b.info.RequestID,
		CredentialName: b.credentialName,
		Operation:      b.operation,
		Actor:          b.info.Actor,
		Path:           b.info.Path,
		Method:         b.info.Method,
		Success:        success,
		StatusCode:     statusCode,
		Events:         append([]EventParameters(nil), b.events...),
		CreatedAt:      createdAt,
	}
}
