package app

import (
	"context"
	"fmt"
	"sync"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
)

type cryptoComponents struct {
	kmsService         cryptoService.KMSService
	aeadManager        cryptoService.AEADManager
	encryptionKeyChain *cryptoDomain.EncryptionKeyChain
	encryptor          cryptoService.Encryptor

	kmsServiceInit         sync.Once
	aeadManagerInit        sync.Once
	encryptionKeyChainInit sync.Once
	encryptorInit          sync.Once
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// EncryptionKeyChain returns the encryption key chain loaded from configuration.
func (c *Container) EncryptionKeyChain() (*cryptoDomain.EncryptionKeyChain, error) {
	var err error
	c.encryptionKeyChainInit.Do(func() {
		c.encryptionKeyChain, err = c.initEncryptionKeyChain()
		if err != nil {
			c.initErrors["encryptionKeyChain"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptionKeyChain"]; exists {
		return nil, storedErr
	}
	return c.encryptionKeyChain, nil
}

// Encryptor returns the encryptor used to seal credential values at rest.
func (c *Container) Encryptor() (cryptoService.Encryptor, error) {
	var err error
	c.encryptorInit.Do(func() {
		c.encryptor, err = c.initEncryptor()
		if err != nil {
			c.initErrors["encryptor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptor"]; exists {
		return nil, storedErr
	}
	return c.encryptor, nil
}

// initEncryptionKeyChain loads the key chain, unwrapping every key through KMS when a
// key URI is configured.
func (c *Container) initEncryptionKeyChain() (*cryptoDomain.EncryptionKeyChain, error) {
	ctx := context.Background()

	var keeper cryptoDomain.KMSKeeper
	if c.config.KMSKeyURI != "" {
		k, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, fmt.Errorf("failed to open kms keeper: %w", err)
		}
		defer func() {
			if closeErr := k.Close(); closeErr != nil {
				c.Logger().Warn("failed to close kms keeper", "error", closeErr)
			}
		}()
		keeper = k
	}

	chain, err := cryptoDomain.LoadEncryptionKeyChain(
		ctx,
		c.config.EncryptionKeys,
		c.config.ActiveEncryptionKeyID,
		keeper,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load encryption key chain: %w", err)
	}
	return chain, nil
}

// initEncryptor creates the key chain encryptor for the configured algorithm.
func (c *Container) initEncryptor() (cryptoService.Encryptor, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.EncryptionAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption algorithm: %w", err)
	}

	chain, err := c.EncryptionKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption key chain for encryptor: %w", err)
	}

	return cryptoService.NewKeyChainEncryptor(chain, c.AEADManager(), alg), nil
}
