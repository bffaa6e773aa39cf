package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Fragments the supported dialects put in their unique-violation messages,
// in order: postgres (23505), mysql (1062), sqlite (2067). Drivers don't
// share a typed error for this, so we match on text.
var duplicateKeyFragments = []string{
	"duplicate key value violates unique constraint",
	"Error 1062",
	"UNIQUE constraint failed",
}

// IsDuplicateKeyErr reports whether err is a unique-constraint violation
// on any of the supported dialects.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	for _, fragment := range duplicateKeyFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
