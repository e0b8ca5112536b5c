package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// fakeEntryRepo is an in-memory AccessControlEntryRepository.
type fakeEntryRepo struct {
	mu      sync.Mutex
	entries map[string]*permissionDomain.AccessControlEntry
	err     error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[string]*permissionDomain.AccessControlEntry)}
}

func entryKey(credentialName, actor string) string {
	return strings.ToLower(credentialName) + "|" + actor
}

func (f *fakeEntryRepo) grant(credentialName, actor string, ops ...permissionDomain.Operation) {
	entry := &permissionDomain.AccessControlEntry{CredentialName: credentialName, Actor: actor}
	entry.Merge(ops)
	f.entries[entryKey(credentialName, actor)] = entry
}

func (f *fakeEntryRepo) Create(_ context.Context, entry *permissionDomain.AccessControlEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entryKey(entry.CredentialName, entry.Actor)] = entry
	return nil
}

func (f *fakeEntryRepo) Update(_ context.Context, entry *permissionDomain.AccessControlEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entryKey(entry.CredentialName, entry.Actor)] = entry
	return nil
}

func (f *fakeEntryRepo) Get(_ context.Context, credentialName string) ([]*permissionDomain.AccessControlEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*permissionDomain.AccessControlEntry
	for _, e := range f.entries {
		if strings.EqualFold(e.CredentialName, credentialName) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) GetEntry(
	_ context.Context,
	credentialName, actor string,
) (*permissionDomain.AccessControlEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	entry, ok := f.entries[entryKey(credentialName, actor)]
	if !ok {
		return nil, permissionDomain.ErrResourceNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeEntryRepo) DeleteEntry(_ context.Context, credentialName, actor string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := entryKey(credentialName, actor)
	if _, ok := f.entries[key]; !ok {
		return false, nil
	}
	delete(f.entries, key)
	return true, nil
}

func (f *fakeEntryRepo) DeleteByCredentialName(_ context.Context, credentialName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, e := range f.entries {
		if strings.EqualFold(e.CredentialName, credentialName) {
			delete(f.entries, key)
		}
	}
	return nil
}

// fakeNames resolves a fixed set of credential names.
type fakeNames map[string]bool

func (f fakeNames) Exists(_ context.Context, name string) (bool, error) {
	return f[strings.ToLower(name)], nil
}

// recorder collects audit annotations.
type recorder struct {
	events []auditDomain.EventParameters
}

func (r *recorder) AddEvent(op auditDomain.OperationCode, name string) {
	r.events = append(r.events, auditDomain.EventParameters{Operation: op, CredentialName: name})
}

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordAuditRecord(ctx context.Context, operation string, success bool) {
	m.Called(ctx, operation, success)
}

func (m *mockBusinessMetrics) RecordAuditFailure(ctx context.Context, operation string) {
	m.Called(ctx, operation)
}

func (m *mockBusinessMetrics) RecordBulkRegeneration(ctx context.Context, regenerated, failed int) {
	m.Called(ctx, regenerated, failed)
}

// mockPermissionUseCase is a mock implementation of PermissionUseCase.
type mockPermissionUseCase struct {
	mock.Mock
}

func (m *mockPermissionUseCase) GetACL(
	ctx context.Context,
	actor, credentialName string,
	events auditDomain.EventRecorder,
) ([]*permissionDomain.AccessControlEntry, error) {
	args := m.Called(ctx, actor, credentialName, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.AccessControlEntry), args.Error(1)
}

func (m *mockPermissionUseCase) SetACL(
	ctx context.Context,
	actor, credentialName string,
	entries []*permissionDomain.AccessControlEntry,
	events auditDomain.EventRecorder,
) ([]*permissionDomain.AccessControlEntry, error) {
	args := m.Called(ctx, actor, credentialName, entries, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.AccessControlEntry), args.Error(1)
}

func (m *mockPermissionUseCase) DeleteACLEntry(
	ctx context.Context,
	actor, credentialName, entryActor string,
	events auditDomain.EventRecorder,
) error {
	args := m.Called(ctx, actor, credentialName, entryActor, events)
	return args.Error(0)
}

func (m *mockPermissionUseCase) Save(
	ctx context.Context,
	credentialName string,
	entries []*permissionDomain.AccessControlEntry,
) error {
	args := m.Called(ctx, credentialName, entries)
	return args.Error(0)
}

func (m *mockPermissionUseCase) DeleteAll(ctx context.Context, credentialName string) error {
	args := m.Called(ctx, credentialName)
	return args.Error(0)
}
