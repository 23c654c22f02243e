package service

import (
	"errors"
	"fmt"

	"provenance-ledger/pkg/apperror"
)

// dbError keeps an *apperror.AppError raised by a repository (such as an
// allocation conflict) and wraps anything else as a database error.
func dbError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.ErrDatabaseError(fmt.Errorf("%s: %w", op, err))
}

func isAllocationConflict(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == apperror.CodeAllocationConflict
}
