// Package dto provides data transfer objects for the permission endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
	customValidation "github.com/allisson/credstore/internal/validation"
)

// operationRule accepts only the known operation names.
var operationRule = validation.By(func(value any) error {
	op, _ := value.(string)
	_, err := permissionDomain.ParseOperation(op)
	return err
})

// PermissionRequest grants operations to one actor.
type PermissionRequest struct {
	Actor      string   `json:"actor"`
	Operations []string `json:"operations"`
}

// Validate checks if the permission request is valid.
func (p PermissionRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Actor, validation.Required, customValidation.Actor),
		validation.Field(&p.Operations, validation.Required, validation.Each(operationRule)),
	)
}

// ToEntries converts permission requests to ACL entries. Requests must be validated first.
func ToEntries(permissions []PermissionRequest) []*permissionDomain.AccessControlEntry {
	entries := make([]*permissionDomain.AccessControlEntry, 0, len(permissions))
	for _, p := range permissions {
		ops := make([]permissionDomain.Operation, 0, len(p.Operations))
		for _, op := range p.Operations {
			ops = append(ops, permissionDomain.Operation(op))
		}
		entries = append(entries, &permissionDomain.AccessControlEntry{Actor: p.Actor, Operations: ops})
	}
	return entries
}

// SetPermissionsRequest merges permissions into the ACL of a credential.
type SetPermissionsRequest struct {
	CredentialName string              `json:"credential_name"`
	Permissions    []PermissionRequest `json:"permissions"`
}

// Validate checks if the set permissions request is valid.
func (r *SetPermissionsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CredentialName, validation.Required, customValidation.CredentialName),
		validation.Field(&r.Permissions, validation.Required),
	)
}
