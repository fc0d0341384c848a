package server

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	hhmmRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	// Thai mobile and landline numbers: leading zero, 9 or 10 digits.
	phoneThRe = regexp.MustCompile(`^0[0-9]{8,9}$`)
)

// RegisterValidators wires the custom binding tags used by request models.
// Must run before the router binds its first request.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone_th", func(fl validator.FieldLevel) bool {
		return phoneThRe.MatchString(fl.Field().String())
	})
}
