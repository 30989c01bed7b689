package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-material/internal/common"
)

// ErrNotFound is wrapped by every 404 the admin API returns.
var ErrNotFound = errors.New("admin: not found")

func notFound(entity string) error {
	return &common.AppError{
		Code:       "NOT_FOUND",
		Message:    entity + " not found",
		HTTPStatus: http.StatusNotFound,
		Err:        fmt.Errorf("%w: %s", ErrNotFound, entity),
	}
}

// storeError maps a query failure onto an API error.
func storeError(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return &common.AppError{Code: "CONFLICT", Message: entity + " already exists", HTTPStatus: http.StatusConflict, Err: err,
				Details: map[string]any{"constraint": pgErr.ConstraintName}}
		case pgerrcode.ForeignKeyViolation:
			return &common.AppError{Code: "REFERENCE_CONFLICT", Message: entity + " references a missing or in-use record", HTTPStatus: http.StatusConflict, Err: err,
				Details: map[string]any{"constraint": pgErr.ConstraintName}}
		case pgerrcode.CheckViolation:
			return &common.AppError{Code: "VALIDATION_FAILED", Message: entity + " violates a constraint", HTTPStatus: http.StatusUnprocessableEntity, Err: err,
				Details: map[string]any{"constraint": pgErr.ConstraintName}}
		}
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// invalid reports a rule the validator tags cannot express.
func invalid(field, rule string) error {
	return &common.AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "invalid payload",
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        fmt.Errorf("%s: %s", field, rule),
		Details:    []common.FieldError{{Field: field, Rule: rule}},
	}
}
