package form

import (
	"errors"
	"fmt"

	"contact-relay/pkg/models"
	"contact-relay/pkg/validation"
)

var ErrUnknownField = errors.New("unknown form field")

// State tracks the values and touched fields of one contact form between edits.
// It is not safe for concurrent use.
type State struct {
	validator *validation.Validator
	initial   models.ContactForm
	values    models.ContactForm
	touched   map[string]bool
	result    validation.Result
}

// New returns a form holding its initial values.
func New(v *validation.Validator, formName string) *State {
	s := &State{
		validator: v,
		initial:   models.NewContactForm(formName),
	}
	s.Reset()
	return s
}

// Set updates one field, marks it touched and revalidates the whole form, so an
// edit to phone also refreshes the mobile error and vice versa.
func (s *State) Set(field, value string) error {
	if !s.values.Set(field, value) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	s.touched[field] = true
	s.revalidate()
	return nil
}

// Touch marks a field as visited without changing it.
func (s *State) Touch(field string) error {
	if _, ok := s.values.Get(field); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	s.touched[field] = true
	s.revalidate()
	return nil
}

func (s *State) Result() validation.Result {
	return s.result
}

func (s *State) Values() models.ContactForm {
	return s.values
}

// VisibleErrors returns the errors of touched fields only.
func (s *State) VisibleErrors() map[string]string {
	out := map[string]string{}
	for field, msg := range s.result.Errors {
		if s.touched[field] {
			out[field] = msg
		}
	}
	return out
}

// Reset restores the initial values and forgets touched fields.
func (s *State) Reset() {
	s.values = s.initial
	s.touched = map[string]bool{}
	s.revalidate()
}

func (s *State) revalidate() {
	s.result = s.validator.Check(s.values, s.initial, s.touched)
}
