package service

import (
	"encoding/json"
	"errors"

	"tourdesk-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventPublisher pushes back-office events (booking completed, cancellation
// posted) to connected UI clients. Implemented by the websocket hub; may be
// nil in tests.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// parseActor turns the request's user id into an audit actor. Invalid or
// empty ids degrade to a system actor rather than failing the operation.
func parseActor(userID string) *uuid.UUID {
	if userID == "" {
		return nil
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	return &parsed
}

// parseAmount parses a required non-negative decimal string field.
func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, apperror.Validation("%s is required", field)
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperror.Validation("invalid %s: %v", field, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, apperror.Validation("%s must not be negative", field)
	}
	return amount, nil
}

// parsePositiveAmount parses a required strictly positive decimal string field.
func parsePositiveAmount(field, value string) (decimal.Decimal, error) {
	amount, err := parseAmount(field, value)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, apperror.Validation("%s must be greater than 0", field)
	}
	return amount, nil
}

// parseOptionalAmount parses an optional non-negative decimal string field,
// defaulting to zero.
func parseOptionalAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return parseAmount(field, value)
}

// lookupErr maps a repository read failure onto the error taxonomy: a missing
// referenced entity aborts the transaction as not-found, anything else is
// internal.
func lookupErr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(format, args...)
	}
	return apperror.Wrap(apperror.KindInternal, "lookup failed", err)
}

func auditDetails(v interface{}) string {
	payload, _ := json.Marshal(v)
	return string(payload)
}

func strPtr(s string) *string { return &s }
