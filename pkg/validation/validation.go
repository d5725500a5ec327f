package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"contact-relay/pkg/models"
)

// Result is the validation state of the contact form.
type Result struct {
	Errors      map[string]string `json:"errors"`
	Touched     map[string]bool   `json:"touched"`
	Valid       bool              `json:"valid"`
	Dirty       bool              `json:"dirty"`
	Submittable bool              `json:"submittable"`
}

// Validator checks contact forms against the field rules declared on models.ContactForm.
// It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	subjects []string
}

// New creates a Validator accepting only the given subjects.
func New(subjects []string) *Validator {
	v := &Validator{
		validate: validator.New(),
		subjects: append([]string(nil), subjects...),
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or a nil func.
	_ = v.validate.RegisterValidation("subject", func(fl validator.FieldLevel) bool {
		return v.IsValidSubject(fl.Field().String())
	})

	return v
}

// Subjects returns the configured subject list.
func (v *Validator) Subjects() []string {
	return append([]string(nil), v.subjects...)
}

// IsValidSubject reports whether s is one of the configured subjects.
func (v *Validator) IsValidSubject(s string) bool {
	for _, subject := range v.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// IsValidEmail reports whether s has valid email syntax.
func (v *Validator) IsValidEmail(s string) bool {
	return v.validate.Var(s, "required,email") == nil
}

// Validate runs every field rule and returns the first failing message per field.
// Phone and mobile are checked together on every run.
func (v *Validator) Validate(form models.ContactForm) map[string]string {
	out := map[string]string{}

	err := v.validate.Struct(form)
	if err == nil {
		return out
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// Only reachable with a broken rule declaration.
		out["form"] = err.Error()
		return out
	}
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

// Check validates form and derives the aggregate flags. touched and initial come
// from the caller's form state.
func (v *Validator) Check(form, initial models.ContactForm, touched map[string]bool) Result {
	errs := v.Validate(form)
	dirty := form != initial
	valid := len(errs) == 0
	hasPhone := form.Phone != "" || form.Mobile != ""

	t := make(map[string]bool, len(touched))
	for k, val := range touched {
		t[k] = val
	}

	return Result{
		Errors:      errs,
		Touched:     t,
		Valid:       valid,
		Dirty:       dirty,
		Submittable: valid && hasPhone && dirty,
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "required_without":
		return "One of Phone or Mobile is required"
	case "max":
		return fmt.Sprintf("Must be %s characters or less", fe.Param())
	case "email":
		return "Invalid email address"
	case "subject":
		return "Must be one of the listed subjects"
	default:
		return "Invalid value"
	}
}
