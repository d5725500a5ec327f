package validation

import (
	"strings"
	"testing"

	"contact-relay/pkg/models"
)

var testSubjects = []string{"Support", "Sales"}

func validForm() models.ContactForm {
	return models.ContactForm{
		FormName:  "contact",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "0123456",
		Subject:   "Support",
		Message:   "Hello",
	}
}

func TestValidate_ValidForm(t *testing.T) {
	v := New(testSubjects)
	if errs := v.Validate(validForm()); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *models.ContactForm)
		field   string
		message string
	}{
		{"first name required", func(f *models.ContactForm) { f.FirstName = "" }, "first_name", "Required"},
		{"first name too long", func(f *models.ContactForm) { f.FirstName = strings.Repeat("a", 16) }, "first_name", "Must be 15 characters or less"},
		{"last name too long", func(f *models.ContactForm) { f.LastName = strings.Repeat("b", 21) }, "last_name", "Must be 20 characters or less"},
		{"email required", func(f *models.ContactForm) { f.Email = "" }, "email", "Required"},
		{"email syntax", func(f *models.ContactForm) { f.Email = "not-an-email" }, "email", "Invalid email address"},
		{"subject required", func(f *models.ContactForm) { f.Subject = "" }, "subject", "Required"},
		{"subject too long", func(f *models.ContactForm) { f.Subject = strings.Repeat("s", 51) }, "subject", "Must be 50 characters or less"},
		{"subject not listed", func(f *models.ContactForm) { f.Subject = "Billing" }, "subject", "Must be one of the listed subjects"},
		{"message required", func(f *models.ContactForm) { f.Message = "" }, "message", "Required"},
		{"message too long", func(f *models.ContactForm) { f.Message = strings.Repeat("m", 1001) }, "message", "Must be 1000 characters or less"},
		{"phone too long", func(f *models.ContactForm) { f.Phone = strings.Repeat("1", 16) }, "phone", "Must be 15 characters or less"},
		{"mobile too long", func(f *models.ContactForm) { f.Mobile = strings.Repeat("3", 16) }, "mobile", "Must be 15 characters or less"},
	}

	v := New(testSubjects)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			errs := v.Validate(form)
			if got := errs[tt.field]; got != tt.message {
				t.Errorf("error for %s = %q, want %q (all: %v)", tt.field, got, tt.message, errs)
			}
		})
	}
}

func TestValidate_CountsCharactersNotBytes(t *testing.T) {
	v := New(testSubjects)
	form := validForm()
	form.FirstName = strings.Repeat("è", 15)
	if errs := v.Validate(form); errs["first_name"] != "" {
		t.Errorf("15 accented letters rejected: %v", errs)
	}
}

func TestValidate_PhoneOrMobile(t *testing.T) {
	tests := []struct {
		name          string
		phone, mobile string
		wantErrs      bool
	}{
		{"both empty", "", "", true},
		{"phone only", "0123", "", false},
		{"mobile only", "", "3331234", false},
		{"both", "0123", "3331234", false},
	}

	v := New(testSubjects)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			form.Phone, form.Mobile = tt.phone, tt.mobile
			errs := v.Validate(form)

			_, phoneErr := errs["phone"]
			_, mobileErr := errs["mobile"]
			if phoneErr != tt.wantErrs || mobileErr != tt.wantErrs {
				t.Errorf("phone/mobile errors = %v/%v, want %v (all: %v)", phoneErr, mobileErr, tt.wantErrs, errs)
			}
			if tt.wantErrs && errs["phone"] != "One of Phone or Mobile is required" {
				t.Errorf("phone message = %q", errs["phone"])
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name+tag@example.co.uk", true},
		{"not-an-email", false},
		{"user@", false},
		{"@example.com", false},
		{"", false},
	}

	v := New(testSubjects)
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := v.IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestCheck_Submittable(t *testing.T) {
	v := New(testSubjects)
	initial := models.NewContactForm("contact")

	if r := v.Check(initial, initial, nil); r.Submittable || r.Dirty {
		t.Errorf("initial form: %+v, want not submittable and not dirty", r)
	}

	form := validForm()
	if r := v.Check(form, initial, map[string]bool{"first_name": true}); !r.Submittable || !r.Valid || !r.Dirty {
		t.Errorf("valid form: %+v, want submittable", r)
	}

	form.Phone = ""
	if r := v.Check(form, initial, nil); r.Submittable {
		t.Errorf("no phone or mobile: %+v, want not submittable", r)
	}

	form.Mobile = "3331234"
	if r := v.Check(form, initial, nil); !r.Submittable {
		t.Errorf("mobile only: %+v, want submittable", r)
	}
}

func TestSubjects_ReturnsCopy(t *testing.T) {
	v := New(testSubjects)
	got := v.Subjects()
	got[0] = "changed"
	if !v.IsValidSubject("Support") {
		t.Error("mutating Subjects() result changed the validator")
	}
}
