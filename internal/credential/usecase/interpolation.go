package usecase

import (
	"context"
	"maps"
	"slices"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// credentialReferenceKey marks a credentials object to be replaced by a stored value.
const credentialReferenceKey = "credstore-ref"

var errInvalidReference = apperrors.Wrap(apperrors.ErrInvalidInput, "credential reference must be a string")

// Interpolate walks a service bindings document of the form
// {"<service>": [{"credentials": {"credstore-ref": "<name>"}, ...}, ...], ...}.
// Entries of any other shape are left untouched. Services are visited in name order so
// the annotations are deterministic.
func (c *credentialUseCase) Interpolate(
	ctx context.Context,
	actor string,
	document map[string]any,
	events auditDomain.EventRecorder,
) (map[string]any, error) {
	for _, service := range slices.Sorted(maps.Keys(document)) {
		instances, ok := document[service].([]any)
		if !ok {
			continue
		}
		for _, instance := range instances {
			binding, ok := instance.(map[string]any)
			if !ok {
				continue
			}
			credentials, ok := binding["credentials"].(map[string]any)
			if !ok {
				continue
			}
			reference, found := credentials[credentialReferenceKey]
			if !found {
				continue
			}
			name, ok := reference.(string)
			if !ok {
				return nil, errInvalidReference
			}

			credential, err := c.Get(ctx, actor, name, events)
			if err != nil {
				return nil, err
			}
			binding["credentials"] = credential.Value.Fields()
		}
	}
	return document, nil
}
