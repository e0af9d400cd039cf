package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/entregas/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	secretTag  = "secret"
	secretText = "{0} must be at most 72 bytes long"
)

// MaxSecretBytes is the longest secret bcrypt can hash.
const MaxSecretBytes = 72

// InitValidators registers the user validators. core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
	_ = validate.RegisterValidation(secretTag, secretValidation)
	core.RegisterCustomTranslation(validate, translator, secretTag, secretText)
}

// roleValidation checks that the provided role is one of AllRoles
func roleValidation(fl validator.FieldLevel) bool {
	if role, ok := fl.Field().Interface().(string); ok {
		return IsValidRole(role)
	}
	return false
}

// secretValidation counts bytes, not runes: bcrypt rejects anything longer than MaxSecretBytes.
func secretValidation(fl validator.FieldLevel) bool {
	if pwd, ok := fl.Field().Interface().(string); ok {
		return len(pwd) <= MaxSecretBytes
	}
	return false
}
