package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
)

// RunCreateEncryptionKey generates a 32-byte key for encrypting credential values and
// prints the environment variables that install it. When kmsKeyURI is set the key is
// wrapped by the KMS key before it is encoded. Key material is zeroed after encoding.
// If keyID is empty a default ID in format "encryption-key-YYYY-MM-DD" is used.
func RunCreateEncryptionKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyID, kmsKeyURI string,
) error {
	if keyID == "" {
		keyID = fmt.Sprintf("encryption-key-%s", time.Now().Format(time.DateOnly))
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	encoded := key
	if kmsKeyURI != "" {
		keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()

		encoded, err = keeper.Encrypt(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to encrypt encryption key with KMS: %w", err)
		}
	}

	value := base64.StdEncoding.EncodeToString(encoded)

	_, _ = fmt.Fprintln(writer, "# Encryption Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintf(writer, "ENCRYPTION_KEYS=\"%s:%s\"\n", keyID, value)
	_, _ = fmt.Fprintf(writer, "ACTIVE_ENCRYPTION_KEY_ID=\"%s\"\n", keyID)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# To rotate, append the new key and switch the active id:")
	_, _ = fmt.Fprintf(writer, "# ENCRYPTION_KEYS=\"%s:%s,new-key:...\"\n", keyID, value)
	_, _ = fmt.Fprintln(writer, "# ACTIVE_ENCRYPTION_KEY_ID=\"new-key\"")

	logger.Info("encryption key created", slog.String("key_id", keyID), slog.Bool("kms", kmsKeyURI != ""))
	return nil
}
