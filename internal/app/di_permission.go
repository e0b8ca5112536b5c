package app

import (
	"fmt"
	"sync"

	permissionHTTP "github.com/allisson/credstore/internal/permission/http"
	permissionRepository "github.com/allisson/credstore/internal/permission/repository"
	permissionUseCase "github.com/allisson/credstore/internal/permission/usecase"
)

type permissionComponents struct {
	accessControlEntryRepository permissionUseCase.AccessControlEntryRepository
	permissionEnforcer           permissionUseCase.PermissionEnforcer
	permissionUseCase            permissionUseCase.PermissionUseCase
	permissionHandler            *permissionHTTP.PermissionHandler

	accessControlEntryRepositoryInit sync.Once
	permissionEnforcerInit           sync.Once
	permissionUseCaseInit            sync.Once
	permissionHandlerInit            sync.Once
}

// AccessControlEntryRepository returns the ACL entry repository based on database driver.
func (c *Container) AccessControlEntryRepository() (permissionUseCase.AccessControlEntryRepository, error) {
	var err error
	c.accessControlEntryRepositoryInit.Do(func() {
		c.accessControlEntryRepository, err = c.initAccessControlEntryRepository()
		if err != nil {
			c.initErrors["accessControlEntryRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["accessControlEntryRepository"]; exists {
		return nil, storedErr
	}
	return c.accessControlEntryRepository, nil
}

// PermissionEnforcer returns the permission enforcer.
func (c *Container) PermissionEnforcer() (permissionUseCase.PermissionEnforcer, error) {
	var err error
	c.permissionEnforcerInit.Do(func() {
		c.permissionEnforcer, err = c.initPermissionEnforcer()
		if err != nil {
			c.initErrors["permissionEnforcer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionEnforcer"]; exists {
		return nil, storedErr
	}
	return c.permissionEnforcer, nil
}

// PermissionUseCase returns the ACL use case.
func (c *Container) PermissionUseCase() (permissionUseCase.PermissionUseCase, error) {
	var err error
	c.permissionUseCaseInit.Do(func() {
		c.permissionUseCase, err = c.initPermissionUseCase()
		if err != nil {
			c.initErrors["permissionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionUseCase"]; exists {
		return nil, storedErr
	}
	return c.permissionUseCase, nil
}

// PermissionHandler returns the HTTP handler for ACL endpoints.
func (c *Container) PermissionHandler() (*permissionHTTP.PermissionHandler, error) {
	var err error
	c.permissionHandlerInit.Do(func() {
		c.permissionHandler, err = c.initPermissionHandler()
		if err != nil {
			c.initErrors["permissionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionHandler"]; exists {
		return nil, storedErr
	}
	return c.permissionHandler, nil
}

func (c *Container) initAccessControlEntryRepository() (permissionUseCase.AccessControlEntryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for access control entry repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return permissionRepository.NewPostgreSQLAccessControlEntryRepository(db), nil
	case "mysql":
		return permissionRepository.NewMySQLAccessControlEntryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initPermissionEnforcer() (permissionUseCase.PermissionEnforcer, error) {
	entryRepo, err := c.AccessControlEntryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get access control entry repository for permission enforcer: %w", err)
	}

	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for permission enforcer: %w", err)
	}

	return permissionUseCase.NewPermissionEnforcer(
		entryRepo,
		credentialRepo,
		c.config.ACLEnforcementEnabled,
	), nil
}

func (c *Container) initPermissionUseCase() (permissionUseCase.PermissionUseCase, error) {
	entryRepo, err := c.AccessControlEntryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get access control entry repository for permission use case: %w", err)
	}

	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for permission use case: %w", err)
	}

	enforcer, err := c.PermissionEnforcer()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission enforcer for permission use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for permission use case: %w", err)
	}

	useCase := permissionUseCase.NewPermissionUseCase(entryRepo, credentialRepo, enforcer)
	return permissionUseCase.NewPermissionUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initPermissionHandler() (*permissionHTTP.PermissionHandler, error) {
	executor, err := c.AuditedOperationExecutor()
	if err != nil {
		return nil, fmt.Errorf("failed to get audited operation executor for permission handler: %w", err)
	}

	useCase, err := c.PermissionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission use case for permission handler: %w", err)
	}

	return permissionHTTP.NewPermissionHandler(executor, useCase, c.Logger()), nil
}
