package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditService "github.com/allisson/credstore/internal/audit/service"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// errActionFailed makes the transaction manager roll back a failed action.
var errActionFailed = errors.New("audited action failed")

// auditedOperationExecutor implements AuditedOperationExecutor.
type auditedOperationExecutor struct {
	txManager   database.TxManager
	recordRepo  AuditRecordRepository
	signer      auditService.AuditSigner
	securityLog auditService.SecurityEventLogger
	logger      *slog.Logger
	now         func() time.Time
}

// PerformWithAuditing runs action inside a transaction and audits its outcome.
func (e *auditedOperationExecutor) PerformWithAuditing(
	ctx context.Context,
	operation auditDomain.OperationCode,
	action Action,
) (*auditDomain.Result, error) {
	info, _ := auditDomain.GetRequestInfo(ctx)
	builder := auditDomain.NewRecordBuilder(info, operation)

	var (
		result    *auditDomain.Result
		actionErr error
		record    *auditDomain.AuditRecord
	)

	err := e.txManager.WithTx(ctx, func(txCtx context.Context) error {
		result, actionErr = action(txCtx, builder)
		if actionErr != nil || (result != nil && !result.Succeeded()) {
			return errActionFailed
		}
		record = builder.Build(true, statusCode(result, nil), e.timestamp())
		return e.persist(txCtx, record)
	})

	// The failed action is rolled back; its failure record gets its own transaction.
	if errors.Is(err, errActionFailed) && !errors.Is(err, database.ErrRollback) {
		record = builder.Build(false, statusCode(result, actionErr), e.timestamp())
		err = e.txManager.WithTx(ctx, func(txCtx context.Context) error {
			return e.persist(txCtx, record)
		})
	}

	if err != nil {
		e.logger.ErrorContext(ctx, "failed to persist audit record",
			slog.String("operation", string(operation)),
			slog.String("request_id", info.RequestID),
			slog.Any("error", err),
		)
		return nil, auditDomain.ErrAuditUnavailable
	}

	if logErr := e.securityLog.Log(ctx, auditDomain.NewSecurityEvent(record)); logErr != nil {
		e.logger.WarnContext(ctx, "failed to write security event",
			slog.String("audit_record_id", record.ID.String()),
			slog.Any("error", logErr),
		)
	}

	return result, actionErr
}

func (e *auditedOperationExecutor) persist(ctx context.Context, record *auditDomain.AuditRecord) error {
	if e.signer != nil {
		signature, err := e.signer.Sign(record)
		if err != nil {
			return apperrors.Wrap(err, "failed to sign audit record")
		}
		record.Signature = signature
	}
	return e.recordRepo.Create(ctx, record)
}

// timestamp is truncated to the precision both supported databases store.
func (e *auditedOperationExecutor) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Microsecond)
}

// statusCode is the status recorded for an action outcome.
func statusCode(result *auditDomain.Result, err error) int {
	if err != nil {
		return apperrors.StatusCode(err)
	}
	if result == nil {
		return http.StatusOK
	}
	return result.StatusCode
}

// NewAuditedOperationExecutor creates an AuditedOperationExecutor. A nil signer stores
// unsigned records.
func NewAuditedOperationExecutor(
	txManager database.TxManager,
	recordRepo AuditRecordRepository,
	signer auditService.AuditSigner,
	securityLog auditService.SecurityEventLogger,
	logger *slog.Logger,
) AuditedOperationExecutor {
	return &auditedOperationExecutor{
		txManager:   txManager,
		recordRepo:  recordRepo,
		signer:      signer,
		securityLog: securityLog,
		logger:      logger,
		now:         time.Now,
	}
}
