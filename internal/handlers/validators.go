package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// registerCustomValidators adds binding rules for domain value types so
// malformed enum values fail at bind time instead of deep in a service.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("documentstatus", func(fl validator.FieldLevel) bool {
		return domain.DocumentStatus(fl.Field().String()).Valid()
	})
}
