package models

import (
	"net/url"
	"strings"
)

// Form field names as they travel in the url-encoded body and in the submission data.
const (
	FieldFormName    = "form-name"
	FieldBotField    = "bot-field"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldMobile      = "mobile"
	FieldSubject     = "subject"
	FieldMessage     = "message"
	FieldUTMSource   = "utm_source"
	FieldUTMMedium   = "utm_medium"
	FieldUTMCampaign = "utm_campaign"
	FieldUTMTerm     = "utm_term"
	FieldUTMContent  = "utm_content"
)

// ContactFields lists the user-editable fields in display order.
var ContactFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldMobile,
	FieldSubject,
	FieldMessage,
}

// Represents the values of the contact form, hidden fields included
type ContactForm struct {
	FormName  string `form:"form-name" json:"form-name"`
	BotField  string `form:"bot-field" json:"bot-field"`
	FirstName string `form:"first_name" json:"first_name" validate:"required,max=15"`
	LastName  string `form:"last_name" json:"last_name" validate:"required,max=20"`
	Email     string `form:"email" json:"email" validate:"required,email"`
	Phone     string `form:"phone" json:"phone" validate:"required_without=Mobile,max=15"`
	Mobile    string `form:"mobile" json:"mobile" validate:"required_without=Phone,max=15"`
	Subject   string `form:"subject" json:"subject" validate:"required,max=50,subject"`
	Message   string `form:"message" json:"message" validate:"required,max=1000"`
}

// NewContactForm returns the initial values for a fresh form.
func NewContactForm(formName string) ContactForm {
	return ContactForm{FormName: formName}
}

// Get returns the value of a form field by its wire name.
func (f *ContactForm) Get(field string) (string, bool) {
	p := f.ref(field)
	if p == nil {
		return "", false
	}
	return *p, true
}

// Set updates a form field by its wire name. It reports false for unknown fields.
func (f *ContactForm) Set(field, value string) bool {
	p := f.ref(field)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (f *ContactForm) ref(field string) *string {
	switch field {
	case FieldFormName:
		return &f.FormName
	case FieldBotField:
		return &f.BotField
	case FieldFirstName:
		return &f.FirstName
	case FieldLastName:
		return &f.LastName
	case FieldEmail:
		return &f.Email
	case FieldPhone:
		return &f.Phone
	case FieldMobile:
		return &f.Mobile
	case FieldSubject:
		return &f.Subject
	case FieldMessage:
		return &f.Message
	}
	return nil
}

// Values serializes the form, empty hidden fields included, the way the browser posts it.
func (f ContactForm) Values() url.Values {
	v := url.Values{}
	v.Set(FieldFormName, f.FormName)
	v.Set(FieldBotField, f.BotField)
	for _, name := range ContactFields {
		value, _ := f.Get(name)
		v.Set(name, value)
	}
	return v
}

// ContactFormFromValues reads the known fields out of a url-encoded body.
func ContactFormFromValues(v url.Values) ContactForm {
	var f ContactForm
	f.Set(FieldFormName, v.Get(FieldFormName))
	f.Set(FieldBotField, v.Get(FieldBotField))
	for _, name := range ContactFields {
		f.Set(name, JoinedValue(v, name))
	}
	return f
}

// JoinedValue returns every value posted under key, joined with ", ".
func JoinedValue(v url.Values, key string) string {
	return strings.Join(v[key], ", ")
}

// Attribution holds the UTM parameters captured when the form was first shown.
// Empty values are treated as absent.
type Attribution struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
}

// Values returns only the captured parameters.
func (a Attribution) Values() url.Values {
	v := url.Values{}
	if a.Source != "" {
		v.Set(FieldUTMSource, a.Source)
	}
	if a.Medium != "" {
		v.Set(FieldUTMMedium, a.Medium)
	}
	if a.Campaign != "" {
		v.Set(FieldUTMCampaign, a.Campaign)
	}
	return v
}
