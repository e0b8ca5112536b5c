package app

import (
	"fmt"
	"sync"

	credentialHTTP "github.com/allisson/credstore/internal/credential/http"
	credentialRepository "github.com/allisson/credstore/internal/credential/repository"
	credentialService "github.com/allisson/credstore/internal/credential/service"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
)

type credentialComponents struct {
	credentialRepository credentialUseCase.CredentialRepository
	credentialStore      credentialUseCase.CredentialStore
	credentialGenerator  credentialService.CredentialGenerator
	credentialUseCase    credentialUseCase.CredentialUseCase
	regenerationEngine   credentialUseCase.RegenerationEngine
	credentialHandler    *credentialHTTP.CredentialHandler

	credentialRepositoryInit sync.Once
	credentialStoreInit      sync.Once
	credentialGeneratorInit  sync.Once
	credentialUseCaseInit    sync.Once
	regenerationEngineInit   sync.Once
	credentialHandlerInit    sync.Once
}

// CredentialRepository returns the credential repository based on database driver.
func (c *Container) CredentialRepository() (credentialUseCase.CredentialRepository, error) {
	var err error
	c.credentialRepositoryInit.Do(func() {
		c.credentialRepository, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepository"]; exists {
		return nil, storedErr
	}
	return c.credentialRepository, nil
}

// CredentialStore returns the credential store.
func (c *Container) CredentialStore() (credentialUseCase.CredentialStore, error) {
	var err error
	c.credentialStoreInit.Do(func() {
		c.credentialStore, err = c.initCredentialStore()
		if err != nil {
			c.initErrors["credentialStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialStore"]; exists {
		return nil, storedErr
	}
	return c.credentialStore, nil
}

// CredentialGenerator returns the generator for every credential kind. Certificates are
// signed by authorities loaded through the credential store.
func (c *Container) CredentialGenerator() (credentialService.CredentialGenerator, error) {
	var err error
	c.credentialGeneratorInit.Do(func() {
		var store credentialUseCase.CredentialStore
		store, err = c.CredentialStore()
		if err != nil {
			err = fmt.Errorf("failed to get credential store for credential generator: %w", err)
			c.initErrors["credentialGenerator"] = err
			return
		}
		c.credentialGenerator = credentialService.NewCredentialGenerator(store)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialGenerator"]; exists {
		return nil, storedErr
	}
	return c.credentialGenerator, nil
}

// CredentialUseCase returns the credential use case.
func (c *Container) CredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	var err error
	c.credentialUseCaseInit.Do(func() {
		c.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// RegenerationEngine returns the regeneration engine.
func (c *Container) RegenerationEngine() (credentialUseCase.RegenerationEngine, error) {
	var err error
	c.regenerationEngineInit.Do(func() {
		c.regenerationEngine, err = c.initRegenerationEngine()
		if err != nil {
			c.initErrors["regenerationEngine"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["regenerationEngine"]; exists {
		return nil, storedErr
	}
	return c.regenerationEngine, nil
}

// CredentialHandler returns the HTTP handler for credential endpoints.
func (c *Container) CredentialHandler() (*credentialHTTP.CredentialHandler, error) {
	var err error
	c.credentialHandlerInit.Do(func() {
		c.credentialHandler, err = c.initCredentialHandler()
		if err != nil {
			c.initErrors["credentialHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialHandler"]; exists {
		return nil, storedErr
	}
	return c.credentialHandler, nil
}

func (c *Container) initCredentialRepository() (credentialUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return credentialRepository.NewPostgreSQLCredentialRepository(db), nil
	case "mysql":
		return credentialRepository.NewMySQLCredentialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initCredentialStore() (credentialUseCase.CredentialStore, error) {
	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential store: %w", err)
	}

	encryptor, err := c.Encryptor()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryptor for credential store: %w", err)
	}

	enforcer, err := c.PermissionEnforcer()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission enforcer for credential store: %w", err)
	}

	acl, err := c.PermissionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission use case for credential store: %w", err)
	}

	return credentialUseCase.NewCredentialStore(
		credentialRepo,
		credentialService.NewValueCipher(encryptor),
		enforcer,
		acl,
	), nil
}

func (c *Container) initCredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	store, err := c.CredentialStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential store for credential use case: %w", err)
	}

	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential use case: %w", err)
	}

	generator, err := c.CredentialGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential generator for credential use case: %w", err)
	}

	enforcer, err := c.PermissionEnforcer()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission enforcer for credential use case: %w", err)
	}

	acl, err := c.PermissionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission use case for credential use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
	}

	useCase := credentialUseCase.NewCredentialUseCase(store, credentialRepo, generator, enforcer, acl)
	return credentialUseCase.NewCredentialUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initRegenerationEngine() (credentialUseCase.RegenerationEngine, error) {
	store, err := c.CredentialStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential store for regeneration engine: %w", err)
	}

	generator, err := c.CredentialGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential generator for regeneration engine: %w", err)
	}

	enforcer, err := c.PermissionEnforcer()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission enforcer for regeneration engine: %w", err)
	}

	executor, err := c.AuditedOperationExecutor()
	if err != nil {
		return nil, fmt.Errorf("failed to get audited operation executor for regeneration engine: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for regeneration engine: %w", err)
	}

	engine := credentialUseCase.NewRegenerationEngine(store, generator, enforcer, executor, c.Logger())
	return credentialUseCase.NewRegenerationEngineWithMetrics(engine, businessMetrics), nil
}

func (c *Container) initCredentialHandler() (*credentialHTTP.CredentialHandler, error) {
	executor, err := c.AuditedOperationExecutor()
	if err != nil {
		return nil, fmt.Errorf("failed to get audited operation executor for credential handler: %w", err)
	}

	useCase, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for credential handler: %w", err)
	}

	engine, err := c.RegenerationEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to get regeneration engine for credential handler: %w", err)
	}

	return credentialHTTP.NewCredentialHandler(executor, useCase, engine, c.Logger()), nil
}
