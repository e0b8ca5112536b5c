// Package dto provides data transfer objects for the credential endpoints.
package dto

import (
	"encoding/json"
	"errors"

	validation "github.com/jellydator/validation"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	permissionDTO "github.com/allisson/credstore/internal/permission/http/dto"
	customValidation "github.com/allisson/credstore/internal/validation"
)

// kindRule accepts only the supported credential kinds.
var kindRule = validation.By(func(value any) error {
	kind, _ := value.(string)
	_, err := credentialDomain.ParseKind(kind)
	return err
})

type decodedValue struct {
	value *credentialDomain.CredentialValue
	err   error
}

func decodeString(_ credentialDomain.Kind, raw json.RawMessage) decodedValue {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return decodedValue{err: errors.New("value must be a string")}
	}
	return decodedValue{value: &credentialDomain.CredentialValue{Value: s}}
}

func decodeObject(_ credentialDomain.Kind, raw json.RawMessage) decodedValue {
	var v credentialDomain.CredentialValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return decodedValue{err: errors.New("value must be an object")}
	}
	v.Value = ""
	return decodedValue{value: &v}
}

// valueDecoders reads the request value in the shape of each kind.
var valueDecoders = credentialDomain.Mapping[json.RawMessage, decodedValue]{
	Value:       decodeString,
	Password:    decodeString,
	Certificate: decodeObject,
}

// SetCredentialRequest stores a user-supplied value.
type SetCredentialRequest struct {
	Name                  string                            `json:"name"`
	Type                  string                            `json:"type"`
	Value                 json.RawMessage                   `json:"value"`
	Overwrite             bool                              `json:"overwrite"`
	AdditionalPermissions []permissionDTO.PermissionRequest `json:"additional_permissions"`
}

// Validate checks if the set credential request is valid.
func (r *SetCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.CredentialName),
		validation.Field(&r.Type, validation.Required, kindRule),
		validation.Field(&r.Value, validation.Required),
		validation.Field(&r.AdditionalPermissions),
	)
}

// ToDomain decodes the value for the requested kind. The request must be validated first.
func (r *SetCredentialRequest) ToDomain() (*credentialDomain.SetRequest, error) {
	kind, err := credentialDomain.ParseKind(r.Type)
	if err != nil {
		return nil, err
	}
	decoded, err := credentialDomain.Apply(kind, valueDecoders, r.Value)
	if err != nil {
		return nil, err
	}
	if decoded.err != nil {
		return nil, customValidation.WrapValidationError(decoded.err)
	}
	return &credentialDomain.SetRequest{
		Name:                  r.Name,
		Kind:                  kind,
		Value:                 decoded.value,
		Overwrite:             r.Overwrite,
		AdditionalPermissions: permissionDTO.ToEntries(r.AdditionalPermissions),
	}, nil
}

// GenerateCredentialRequest asks for a generated value.
type GenerateCredentialRequest struct {
	Name                  string                                 `json:"name"`
	Type                  string                                 `json:"type"`
	Parameters            *credentialDomain.GenerationParameters `json:"parameters"`
	Overwrite             bool                                   `json:"overwrite"`
	AdditionalPermissions []permissionDTO.PermissionRequest      `json:"additional_permissions"`
}

// Validate checks if the generate credential request is valid. Parameters are
// validated per kind by the use case.
func (r *GenerateCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.CredentialName),
		validation.Field(&r.Type, validation.Required, kindRule),
		validation.Field(&r.AdditionalPermissions),
	)
}

// ToDomain converts the request into a generation request. The request must be
// validated first.
func (r *GenerateCredentialRequest) ToDomain() (*credentialDomain.GenerationRequest, error) {
	kind, err := credentialDomain.ParseKind(r.Type)
	if err != nil {
		return nil, err
	}
	return &credentialDomain.GenerationRequest{
		Name:                  r.Name,
		Kind:                  kind,
		Parameters:            r.Parameters,
		Overwrite:             r.Overwrite,
		AdditionalPermissions: permissionDTO.ToEntries(r.AdditionalPermissions),
	}, nil
}

// RegenerateRequest names the credential to regenerate.
type RegenerateRequest struct {
	Name string `json:"name"`
}

// Validate checks if the regenerate request is valid.
func (r *RegenerateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.CredentialName),
	)
}

// BulkRegenerateRequest names the CA whose certificates are regenerated.
type BulkRegenerateRequest struct {
	SignedBy string `json:"signed_by"`
}

// Validate checks if the bulk regenerate request is valid.
func (r *BulkRegenerateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SignedBy, validation.Required, customValidation.CredentialName),
	)
}
