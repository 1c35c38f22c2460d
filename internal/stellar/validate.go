package stellar

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var requests = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkRequired rejects a request with a missing required field before any
// remote call is made.
func checkRequired(req any) error {
	err := requests.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return validationError("invalid request: %v", err)
	}
	fe := fieldErrs[0]
	// drop the struct name: "SwapRequest.destAsset.code" -> "destAsset.code"
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	if fe.Tag() == "required" {
		return validationError("%s is required", field)
	}
	return validationError("%s is invalid", field)
}
