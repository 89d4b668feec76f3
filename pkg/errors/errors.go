package errors

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicate marks a write rejected by a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// IsDuplicate reports whether err is a unique constraint violation.
// It relies on gorm's TranslateError, which the database package enables for every dialect.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate)
}

// IsNotFound reports whether err means the queried row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
