package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var bloodGroups = map[string]struct{}{
	"A+": {}, "A-": {},
	"B+": {}, "B-": {},
	"AB+": {}, "AB-": {},
	"O+": {}, "O-": {},
}

// Register installs custom validations on gin's binding engine. Call once at
// startup before the router handles requests.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("blood_group", validateBloodGroup)
}

func validateBloodGroup(fl validator.FieldLevel) bool {
	_, ok := bloodGroups[fl.Field().String()]
	return ok
}
