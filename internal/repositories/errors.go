package repositories

import (
	"errors"
	"fmt"

	"storefront/pkg/apperrors"

	"gorm.io/gorm"
)

// lookupError turns gorm.ErrRecordNotFound into a NOT_FOUND error and wraps anything else.
func lookupError(err error, entity, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Newf(apperrors.CodeNotFound, "%s not found", entity)
	}
	return fmt.Errorf("failed to get %s %s: %w", entity, key, err)
}

// writeError maps unique-constraint violations to CONFLICT.
func writeError(err error, action, entity string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Wrap(apperrors.CodeConflict, err, entity+" already exists")
	}
	return fmt.Errorf("failed to %s %s: %w", action, entity, err)
}
