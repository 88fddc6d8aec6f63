package service

import (
	"errors"

	"yamdb/internal/http-api/apperror"
)

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
