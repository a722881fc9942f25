// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"bankbook/internal/ledger"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom validators to v. Decimal fields are compared
// as numbers, so gt/gte/lte tags work on decimal.Decimal.
func RegisterOn(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("account_kind", validateAccountKind)
	_ = v.RegisterValidation("month", validateMonth)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateAccountKind(fl validator.FieldLevel) bool {
	_, ok := ledger.ParseAccountKind(fl.Field().String())
	return ok
}

func validateMonth(fl validator.FieldLevel) bool {
	_, ok := ledger.NormalizeMonth(fl.Field().String())
	return ok
}
