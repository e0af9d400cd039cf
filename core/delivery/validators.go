package delivery

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/entregas/core"
)

var (
	statusTag  = "status"
	statusText = "status must be one of " + statusList()

	dateTag  = "date"
	dateText = "{0} must be a valid date (YYYY-MM-DD)"
)

// InitValidators registers the delivery validators. core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	_ = validate.RegisterValidation(dateTag, dateValidation)
	core.RegisterCustomTranslation(validate, translator, dateTag, dateText)
}

func statusList() string {
	names := make([]string, 0, len(Statuses))
	for _, s := range Statuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func statusValidation(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(Status); ok {
		return s.IsValid()
	}
	return false
}

func dateValidation(fl validator.FieldLevel) bool {
	_, ok := core.ParseDate(fl.Field().String())
	return ok
}
