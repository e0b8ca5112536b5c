package dto

import (
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// PermissionResponse is one ACL entry.
type PermissionResponse struct {
	Actor      string   `json:"actor"`
	Operations []string `json:"operations"`
}

// ACLResponse lists the ACL of a credential.
type ACLResponse struct {
	CredentialName string               `json:"credential_name"`
	Permissions    []PermissionResponse `json:"permissions"`
}

// MapEntriesToResponse converts ACL entries to an API response.
func MapEntriesToResponse(credentialName string, entries []*permissionDomain.AccessControlEntry) ACLResponse {
	permissions := make([]PermissionResponse, 0, len(entries))
	for _, entry := range entries {
		ops := make([]string, 0, len(entry.Operations))
		for _, op := range entry.Operations {
			ops = append(ops, string(op))
		}
		permissions = append(permissions, PermissionResponse{Actor: entry.Actor, Operations: ops})
	}
	return ACLResponse{CredentialName: credentialName, Permissions: permissions}
}
