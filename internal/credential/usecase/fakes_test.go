package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// fakeCredentialRepo keeps every version in memory.
type fakeCredentialRepo struct {
	mu       sync.Mutex
	versions map[string][]*credentialDomain.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{versions: make(map[string][]*credentialDomain.Credential)}
}

func (f *fakeCredentialRepo) Create(_ context.Context, credential *credentialDomain.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(credential.Name)
	stored := *credential
	stored.Value = nil
	f.versions[key] = append(f.versions[key], &stored)
	return nil
}

func (f *fakeCredentialRepo) FindMostRecent(_ context.Context, name string) (*credentialDomain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	versions := f.versions[strings.ToLower(name)]
	if len(versions) == 0 {
		return nil, credentialDomain.ErrCredentialNotFound
	}
	latest := *versions[len(versions)-1]
	return &latest, nil
}

func (f *fakeCredentialRepo) FindAllCertificateNamesBySigner(_ context.Context, signerName string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, versions := range f.versions {
		for _, v := range versions {
			if v.Kind == credentialDomain.CertificateKind && strings.EqualFold(v.SignerName, signerName) {
				names = append(names, v.Name)
			}
		}
	}
	return names, nil
}

func (f *fakeCredentialRepo) Exists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.versions[strings.ToLower(name)]) > 0, nil
}

func (f *fakeCredentialRepo) DeleteByName(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(name)
	if len(f.versions[key]) == 0 {
		return false, nil
	}
	delete(f.versions, key)
	return true, nil
}

func (f *fakeCredentialRepo) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.versions[strings.ToLower(name)])
}

// fakeCipher stores values as plain JSON.
type fakeCipher struct{}

func (fakeCipher) Seal(credential *credentialDomain.Credential, value *credentialDomain.CredentialValue) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	credential.EncryptionKeyID = "test"
	credential.Ciphertext = data
	credential.Nonce = []byte("nonce")
	return nil
}

func (fakeCipher) Open(credential *credentialDomain.Credential) (*credentialDomain.CredentialValue, error) {
	var value credentialDomain.CredentialValue
	if err := json.Unmarshal(credential.Ciphertext, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

// fakeACL grants operations per (name, actor) and serves as both PermissionChecker and
// AccessControlStore.
type fakeACL struct {
	mu      sync.Mutex
	entries map[string][]permissionDomain.Operation
}

func newFakeACL() *fakeACL {
	return &fakeACL{entries: make(map[string][]permissionDomain.Operation)}
}

func aclKey(name, actor string) string {
	return strings.ToLower(name) + "|" + actor
}

func (f *fakeACL) grant(name, actor string, ops ...permissionDomain.Operation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[aclKey(name, actor)] = append(f.entries[aclKey(name, actor)], ops...)
}

func (f *fakeACL) revoke(name, actor string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, aclKey(name, actor))
}

func (f *fakeACL) operations(name, actor string) []permissionDomain.Operation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[aclKey(name, actor)]
}

func (f *fakeACL) HasPermission(
	_ context.Context,
	actor, credentialName string,
	op permissionDomain.Operation,
) (bool, error) {
	for _, granted := range f.operations(credentialName, actor) {
		if granted == op {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeACL) CanWrite(ctx context.Context, actor, credentialName string) (bool, error) {
	return f.HasPermission(ctx, actor, credentialName, permissionDomain.WriteACLOperation)
}

func (f *fakeACL) Save(_ context.Context, credentialName string, entries []*permissionDomain.AccessControlEntry) error {
	for _, entry := range entries {
		f.grant(credentialName, entry.Actor, entry.Operations...)
	}
	return nil
}

func (f *fakeACL) DeleteAll(_ context.Context, credentialName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.ToLower(credentialName) + "|"
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

// fakeGenerator returns a distinct value on every call.
type fakeGenerator struct {
	mu       sync.Mutex
	calls    int
	requests []*credentialDomain.GenerationRequest
	err      error
}

func (f *fakeGenerator) Generate(
	_ context.Context,
	request *credentialDomain.GenerationRequest,
	_ string,
) (*credentialDomain.CredentialValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	f.requests = append(f.requests, request)
	generated := fmt.Sprintf("%s-%d", request.Name, f.calls)
	if request.Kind == credentialDomain.CertificateKind {
		return &credentialDomain.CredentialValue{Certificate: generated, PrivateKey: "key"}, nil
	}
	return &credentialDomain.CredentialValue{Value: generated}, nil
}

// auditedCall is one action run by fakeExecutor.
type auditedCall struct {
	operation      auditDomain.OperationCode
	credentialName string
	events         []auditDomain.EventParameters
	err            error
}

// fakeExecutor runs actions without a transaction and records their outcome.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []auditedCall
}

func (f *fakeExecutor) PerformWithAuditing(
	ctx context.Context,
	operation auditDomain.OperationCode,
	action auditUseCase.Action,
) (*auditDomain.Result, error) {
	builder := auditDomain.NewRecordBuilder(auditDomain.RequestInfo{}, operation)
	result, err := action(ctx, builder)
	record := builder.Build(err == nil, 0, time.Now())

	f.mu.Lock()
	f.calls = append(f.calls, auditedCall{
		operation:      operation,
		credentialName: record.CredentialName,
		events:         record.Events,
		err:            err,
	})
	f.mu.Unlock()
	return result, err
}

// recorder collects audit annotations.
type recorder struct {
	events []auditDomain.EventParameters
}

func (r *recorder) AddEvent(op auditDomain.OperationCode, name string) {
	r.events = append(r.events, auditDomain.EventParameters{Operation: op, CredentialName: name})
}

func (r *recorder) count(op auditDomain.OperationCode) int {
	n := 0
	for _, e := range r.events {
		if e.Operation == op {
			n++
		}
	}
	return n
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

// mockCredentialUseCase is a mock implementation of CredentialUseCase.
type mockCredentialUseCase struct {
	mock.Mock
}

func (m *mockCredentialUseCase) Set(
	ctx context.Context,
	actor string,
	request *credentialDomain.SetRequest,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, actor, request, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) Generate(
	ctx context.Context,
	actor string,
	request *credentialDomain.GenerationRequest,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, actor, request, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) Get(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, actor, name, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) Delete(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) error {
	args := m.Called(ctx, actor, name, events)
	return args.Error(0)
}

func (m *mockCredentialUseCase) Interpolate(
	ctx context.Context,
	actor string,
	document map[string]any,
	events auditDomain.EventRecorder,
) (map[string]any, error) {
	args := m.Called(ctx, actor, document, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}
