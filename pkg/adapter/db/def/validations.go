// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package def

import (
	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// Maximum lengths of the identifiers. Table names are shorter because
// some dialects derive sequence and trigger names from them.
const (
	MaxTableNameLength      = 25
	MaxColumnNameLength     = 30
	MaxIndexNameLength      = 30
	MaxConstraintNameLength = 30
)

// ValidateTableName ensures that name is a non-empty lower-case
// identifier which does not start with a digit or '_' and is at most
// MaxTableNameLength characters long.
func ValidateTableName(name string) error {
	return validateIdentifier("Table name", name, MaxTableNameLength)
}

// ValidateColumnName is like ValidateTableName for columns.
func ValidateColumnName(name string) error {
	return validateIdentifier("Column name", name, MaxColumnNameLength)
}

// ValidateIndexName is like ValidateTableName for indexes.
func ValidateIndexName(name string) error {
	return validateIdentifier("Index name", name, MaxIndexNameLength)
}

// ValidateConstraintName is like ValidateTableName for constraints.
func ValidateConstraintName(name string) error {
	return validateIdentifier(
		"Constraint name", name, MaxConstraintNameLength,
	)
}

func validateIdentifier(kind, name string, maxLen int) error {
	if name == "" {
		return cerr.MissingFieldf("%s cannot be null", kind)
	}
	if len(name) > maxLen {
		return cerr.Validationf(
			"%s length can't be more than %d", kind, maxLen,
		)
	}
	if c := name[0]; c == '_' || ('0' <= c && c <= '9') {
		return cerr.Validationf(
			"%s must not start by a number or '_', got '%s'", kind, name,
		)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '_' && !('a' <= c && c <= 'z') && !('0' <= c && c <= '9') {
			return cerr.Validationf(
				"%s must be lower case and contain only alphanumeric"+
					" chars or '_', got '%s'", kind, name,
			)
		}
	}
	return nil
}
