package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

func localKeeperURI(t *testing.T) string {
	t.Helper()
	return "base64key://" + base64.URLEncoding.EncodeToString(randomKey(t))
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kms := NewKMSService()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		keeper, err := kms.OpenKeeper(ctx, localKeeperURI(t))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		ciphertext, err := keeper.Encrypt(ctx, []byte("data"))
		require.NoError(t, err)
		plaintext, err := keeper.Decrypt(ctx, ciphertext)
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), plaintext)
	})

	t.Run("Error_UnsupportedScheme", func(t *testing.T) {
		for _, uri := range []string{"invalid://uri", "", "vault-key-without-scheme"} {
			keeper, err := kms.OpenKeeper(ctx, uri)
			assert.Nil(t, keeper)
			assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedKMSScheme, uri)
		}
	})

	t.Run("Error_MalformedLocalKey", func(t *testing.T) {
		keeper, err := kms.OpenKeeper(ctx, "base64key://not-base64!")
		assert.Nil(t, keeper)
		assert.ErrorContains(t, err, "failed to open KMS keeper")
	})
}

func TestKMSService_WrappedKeyChain(t *testing.T) {
	ctx := context.Background()
	keeper, err := NewKMSService().OpenKeeper(ctx, localKeeperURI(t))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, keeper.Close())
	}()

	key := randomKey(t)
	wrapped, err := keeper.Encrypt(ctx, key)
	require.NoError(t, err)

	chain, err := cryptoDomain.LoadEncryptionKeyChain(
		ctx,
		"kms-key:"+base64.StdEncoding.EncodeToString(wrapped),
		"kms-key",
		keeper,
	)
	require.NoError(t, err)
	defer chain.Close()

	active, ok := chain.Active()
	require.True(t, ok)
	assert.Equal(t, key, active.Key)
}
