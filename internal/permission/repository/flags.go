package repository

import (
	"database/sql"

	apperrors "github.com/allisson/credstore/internal/errors"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// permissionFlags maps operations to the boolean columns of access_entries.
type permissionFlags struct {
	read     bool
	write    bool
	delete   bool
	readACL  bool
	writeACL bool
}

func toFlags(entry *permissionDomain.AccessControlEntry) permissionFlags {
	return permissionFlags{
		read:     entry.Allows(permissionDomain.ReadOperation),
		write:    entry.Allows(permissionDomain.WriteOperation),
		delete:   entry.Allows(permissionDomain.DeleteOperation),
		readACL:  entry.Allows(permissionDomain.ReadACLOperation),
		writeACL: entry.Allows(permissionDomain.WriteACLOperation),
	}
}

func (f permissionFlags) operations() []permissionDomain.Operation {
	granted := []bool{f.read, f.write, f.delete, f.readACL, f.writeACL}
	ops := make([]permissionDomain.Operation, 0, len(granted))
	for i, op := range permissionDomain.AllOperations {
		if granted[i] {
			ops = append(ops, op)
		}
	}
	return ops
}

func affected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows > 0, nil
}
