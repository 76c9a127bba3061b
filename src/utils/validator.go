package utils

import (
	"reflect"
	"strings"

	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	academicLevelTag = "academiclevel"
	classForLevelTag = "classforlevel"
	termTag          = "term"
)

// Validator checks request bodies and reports field errors by their JSON name.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() *Validator {
	v := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(academicLevelTag, func(fl validator.FieldLevel) bool {
		return models.IsLevel(fl.Field().String())
	})
	_ = v.RegisterValidation(classForLevelTag, classForLevel)
	_ = v.RegisterValidation(termTag, func(fl validator.FieldLevel) bool {
		return models.IsTerm(fl.Field().String())
	})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{academicLevelTag, classForLevelTag, termTag} {
		_ = v.RegisterTranslation(tag, trans, registerFn, translateCustom)
	}
	return &Validator{validate: v, translator: trans}
}

// classForLevel checks the field against the sibling Level field.
func classForLevel(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	lvl := parent.FieldByName("Level")
	if !lvl.IsValid() || lvl.Kind() != reflect.String {
		return false
	}
	return models.ClassBelongsToLevel(lvl.String(), fl.Field().String())
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case academicLevelTag:
		return fe.Field() + " must be one of " + strings.Join(models.Levels, ", ")
	case classForLevelTag:
		return fe.Field() + " is not a class of the selected level"
	case termTag:
		return fe.Field() + " must be one of " + strings.Join(models.Terms, ", ")
	}
	return fe.Error()
}

// Struct validates s and returns field name to message, nil when valid.
func (v *Validator) Struct(s interface{}) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}
