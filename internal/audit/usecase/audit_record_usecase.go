package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditService "github.com/allisson/credstore/internal/audit/service"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// verifyPageSize bounds how many records are loaded per query during verification.
const verifyPageSize = 500

// auditRecordUseCase implements AuditRecordUseCase.
type auditRecordUseCase struct {
	recordRepo AuditRecordRepository
	signer     auditService.AuditSigner
}

// VerifyBatch pages through the range and verifies each signed record.
func (a *auditRecordUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*VerificationReport, error) {
	if end.Before(start) {
		return nil, auditDomain.ErrInvalidDateRange
	}

	report := &VerificationReport{}
	for offset := 0; ; offset += verifyPageSize {
		records, err := a.recordRepo.ListByTimeRange(ctx, start, end, offset, verifyPageSize)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit records")
		}

		for _, record := range records {
			report.TotalChecked++
			if len(record.Signature) == 0 {
				report.UnsignedCount++
				continue
			}
			report.SignedCount++
			if err := a.signer.Verify(record); err != nil {
				report.InvalidCount++
				report.InvalidRecords = append(report.InvalidRecords, record.ID)
				continue
			}
			report.ValidCount++
		}

		if len(records) < verifyPageSize {
			return report, nil
		}
	}
}

// NewAuditRecordUseCase creates an AuditRecordUseCase.
func NewAuditRecordUseCase(recordRepo AuditRecordRepository, signer auditService.AuditSigner) AuditRecordUseCase {
	return &auditRecordUseCase{recordRepo: recordRepo, signer: signer}
}
