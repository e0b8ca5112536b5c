package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// kmsSchemes are the gocloud.dev providers registered above. base64key is meant for
// development only.
var kmsSchemes = []string{"awskms", "azurekeyvault", "gcpkms", "hashivault", "base64key"}

// KMSService opens the keeper that wraps ENCRYPTION_KEYS at rest.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

type kmsService struct{}

func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper rejects URIs whose scheme has no registered provider before dialing it.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	u, err := url.Parse(keyURI)
	if err != nil || !slices.Contains(kmsSchemes, u.Scheme) {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedKMSScheme, keyURI)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}
