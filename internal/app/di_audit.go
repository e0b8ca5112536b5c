package app

import (
	"fmt"
	"sync"

	auditRepository "github.com/allisson/credstore/internal/audit/repository"
	auditService "github.com/allisson/credstore/internal/audit/service"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
)

type auditComponents struct {
	auditRecordRepository auditUseCase.AuditRecordRepository
	auditSigner           auditService.AuditSigner
	securityEventLogger   auditService.SecurityEventLogger
	operationExecutor     auditUseCase.AuditedOperationExecutor
	auditRecordUseCase    auditUseCase.AuditRecordUseCase

	auditRecordRepositoryInit sync.Once
	auditSignerInit           sync.Once
	securityEventLoggerInit   sync.Once
	operationExecutorInit     sync.Once
	auditRecordUseCaseInit    sync.Once
}

// AuditRecordRepository returns the audit record repository based on database driver.
func (c *Container) AuditRecordRepository() (auditUseCase.AuditRecordRepository, error) {
	var err error
	c.auditRecordRepositoryInit.Do(func() {
		c.auditRecordRepository, err = c.initAuditRecordRepository()
		if err != nil {
			c.initErrors["auditRecordRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRecordRepository"]; exists {
		return nil, storedErr
	}
	return c.auditRecordRepository, nil
}

// AuditSigner returns the audit record signer, or nil when no signing key is configured.
func (c *Container) AuditSigner() (auditService.AuditSigner, error) {
	var err error
	c.auditSignerInit.Do(func() {
		c.auditSigner, err = c.initAuditSigner()
		if err != nil {
			c.initErrors["auditSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditSigner"]; exists {
		return nil, storedErr
	}
	return c.auditSigner, nil
}

// SecurityEventLogger returns the logger for security events. It writes CEF lines to a
// rotated file when a path is configured and falls back to the application logger.
func (c *Container) SecurityEventLogger() auditService.SecurityEventLogger {
	c.securityEventLoggerInit.Do(func() {
		c.securityEventLogger = c.initSecurityEventLogger()
	})
	return c.securityEventLogger
}

// AuditedOperationExecutor returns the executor that runs operations under audit.
func (c *Container) AuditedOperationExecutor() (auditUseCase.AuditedOperationExecutor, error) {
	var err error
	c.operationExecutorInit.Do(func() {
		c.operationExecutor, err = c.initAuditedOperationExecutor()
		if err != nil {
			c.initErrors["operationExecutor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["operationExecutor"]; exists {
		return nil, storedErr
	}
	return c.operationExecutor, nil
}

// AuditRecordUseCase returns the audit record use case.
func (c *Container) AuditRecordUseCase() (auditUseCase.AuditRecordUseCase, error) {
	var err error
	c.auditRecordUseCaseInit.Do(func() {
		c.auditRecordUseCase, err = c.initAuditRecordUseCase()
		if err != nil {
			c.initErrors["auditRecordUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRecordUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditRecordUseCase, nil
}

func (c *Container) initAuditRecordRepository() (auditUseCase.AuditRecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit record repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLAuditRecordRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLAuditRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditSigner() (auditService.AuditSigner, error) {
	if c.config.AuditSigningKey == "" {
		return nil, nil
	}
	signer, err := auditService.NewAuditSigner([]byte(c.config.AuditSigningKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create audit signer: %w", err)
	}
	return signer, nil
}

func (c *Container) initSecurityEventLogger() auditService.SecurityEventLogger {
	if c.config.SecurityEventLogPath == "" {
		return auditService.NewSlogSecurityEventLogger(c.Logger(), c.version)
	}

	logger, closer := auditService.NewFileCEFLogger(auditService.FileConfig{
		Path:       c.config.SecurityEventLogPath,
		MaxSizeMB:  c.config.SecurityEventLogMaxSizeMB,
		MaxBackups: c.config.SecurityEventLogMaxBackups,
		MaxAgeDays: c.config.SecurityEventLogMaxAgeDays,
		Compress:   c.config.SecurityEventLogCompress,
	}, c.version)

	c.mu.Lock()
	c.closers = append(c.closers, closer)
	c.mu.Unlock()

	return logger
}

func (c *Container) initAuditedOperationExecutor() (auditUseCase.AuditedOperationExecutor, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for audited operation executor: %w", err)
	}

	recordRepo, err := c.AuditRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record repository for audited operation executor: %w", err)
	}

	signer, err := c.AuditSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit signer for audited operation executor: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audited operation executor: %w", err)
	}

	executor := auditUseCase.NewAuditedOperationExecutor(
		txManager,
		recordRepo,
		signer,
		c.SecurityEventLogger(),
		c.Logger(),
	)
	return auditUseCase.NewAuditedOperationExecutorWithMetrics(executor, businessMetrics), nil
}

func (c *Container) initAuditRecordUseCase() (auditUseCase.AuditRecordUseCase, error) {
	recordRepo, err := c.AuditRecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record repository for audit record use case: %w", err)
	}

	signer, err := c.AuditSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit signer for audit record use case: %w", err)
	}
	if signer == nil {
		return nil, auditService.ErrSigningKeyRequired
	}

	return auditUseCase.NewAuditRecordUseCase(recordRepo, signer), nil
}
