package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrStale reports a compare-and-set update that matched no row because
	// the row is gone or no longer in the expected state.
	ErrStale = errors.New("repository: row not in expected state")
)

// translate maps driver errors onto repository sentinels. TranslateError is
// enabled on the gorm config; the string checks cover drivers that do not
// implement the translator.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value") {
		return ErrDuplicate
	}
	return err
}

// conn returns tx when the caller runs inside a transaction, the base handle
// otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
