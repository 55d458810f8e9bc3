package warehouse

import (
	"strings"

	"varasto/internal/core/apperror"
	"varasto/internal/core/types"
)

// Validation messages returned to callers.
const (
	MsgNameRequired          = "Name is required"
	MsgInvalidCapacity       = "Invalid capacity value"
	MsgInvalidInitialBalance = "Invalid initial balance value"
	MsgCapacityNotPositive   = "Capacity must be positive"
	MsgProductNameRequired   = "Product name is required"
	MsgAmountNotPositive     = "Amount must be a positive number"
)

// CreateInput is the raw, unparsed input for creating a warehouse.
// Numeric fields carry client text; blank means zero.
type CreateInput struct {
	Name           string
	Capacity       string
	InitialBalance string
}

// UpdateInput is the raw input for renaming or resizing a warehouse.
// The balance is never supplied by the caller.
type UpdateInput struct {
	Name     string
	Capacity string
}

type createParams struct {
	name     string
	capacity types.Quantity
	initial  types.Quantity
}

type updateParams struct {
	name     string
	capacity types.Quantity
}

// parse converts CreateInput into typed parameters.
// Checks run in a fixed order and the first failure wins.
func (in CreateInput) parse() (createParams, error) {
	capacity, err := types.ParseQuantityOrDefault(in.Capacity, types.ZeroQuantity())
	if err != nil {
		return createParams{}, invalidField("capacity", in.Capacity, MsgInvalidCapacity)
	}
	initial, err := types.ParseQuantityOrDefault(in.InitialBalance, types.ZeroQuantity())
	if err != nil {
		return createParams{}, invalidField("initialBalance", in.InitialBalance, MsgInvalidInitialBalance)
	}
	name, err := validateHeader(in.Name, in.Capacity, capacity)
	if err != nil {
		return createParams{}, err
	}
	return createParams{name: name, capacity: capacity, initial: initial}, nil
}

func (in UpdateInput) parse() (updateParams, error) {
	capacity, err := types.ParseQuantityOrDefault(in.Capacity, types.ZeroQuantity())
	if err != nil {
		return updateParams{}, invalidField("capacity", in.Capacity, MsgInvalidCapacity)
	}
	name, err := validateHeader(in.Name, in.Capacity, capacity)
	if err != nil {
		return updateParams{}, err
	}
	return updateParams{name: name, capacity: capacity}, nil
}

func validateHeader(rawName, rawCapacity string, capacity types.Quantity) (string, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return "", apperror.NewValidation(MsgNameRequired).WithDetail("field", "name")
	}
	if !capacity.IsPositive() {
		return "", invalidField("capacity", rawCapacity, MsgCapacityNotPositive)
	}
	return name, nil
}

// parseAmount parses a movement amount, which must be strictly positive.
func parseAmount(raw string) (types.Quantity, error) {
	amount, err := types.ParseQuantity(raw)
	if err != nil || !amount.IsPositive() {
		return types.ZeroQuantity(), invalidField("amount", raw, MsgAmountNotPositive)
	}
	return amount, nil
}

func parseProductName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperror.NewValidation(MsgProductNameRequired).WithDetail("field", "productName")
	}
	return name, nil
}

func invalidField(field, value, message string) *apperror.AppError {
	return apperror.NewValidation(message).
		WithDetail("field", field).
		WithDetail("value", value)
}
