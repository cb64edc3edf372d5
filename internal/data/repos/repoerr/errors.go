package repoerr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
)

var (
	// ErrInsufficientQuantity is returned when a lot cannot cover a decrement.
	ErrInsufficientQuantity = errors.New("purchase lot has insufficient remaining quantity")
	// ErrLotFull is returned when a restore would exceed the lot's total quantity.
	ErrLotFull = errors.New("purchase lot is already at total quantity")
)

// Map translates store failures into API errors. Errors that are already
// *apierr.Error pass through unchanged.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	if apierr.As(err) != nil {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, ErrInsufficientQuantity):
		return apierr.InsufficientQuantity(wrapped)
	case errors.Is(err, ErrLotFull):
		return apierr.Conflict(wrapped)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.NotFound(wrapped)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.DataUnavailable(wrapped)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return apierr.Conflict(wrapped) // unique_violation
		case "23503", "23514":
			return apierr.Validation(wrapped) // foreign_key_violation, check_violation
		case "40001", "40P01", "55P03":
			return apierr.DataUnavailable(wrapped) // serialization/deadlock/lock_not_available
		}
		return apierr.DataUnavailable(wrapped)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return apierr.Conflict(wrapped)
	case strings.Contains(msg, "check constraint"):
		return apierr.Validation(wrapped)
	default:
		// Anything else is the store failing to answer.
		return apierr.DataUnavailable(wrapped)
	}
}
