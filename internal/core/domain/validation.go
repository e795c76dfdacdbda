package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct tag rules and folds the result into apperrors.ErrValidation.
func validateStruct(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: invalid %s: %s", apperrors.ErrValidation, entity, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: invalid %s: %s", apperrors.ErrValidation, entity, err.Error())
}

func requirePositive(entity, field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s %s must be positive, got %s", apperrors.ErrValidation, entity, field, amount.String())
	}
	return nil
}

func requireNonNegative(entity, field string, amount *decimal.Decimal) error {
	if amount != nil && amount.IsNegative() {
		return fmt.Errorf("%w: %s %s must not be negative, got %s", apperrors.ErrValidation, entity, field, amount.String())
	}
	return nil
}
