package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SubmissionEvent is the body the platform posts to the relay function.
type SubmissionEvent struct {
	Payload *SubmissionPayload `json:"payload"`
}

// SubmissionPayload describes one form submission. The identity fields are kept
// as decoded so they pass through to the CRM untouched.
type SubmissionPayload struct {
	ID        any    `json:"id,omitempty"`
	SiteURL   any    `json:"site_url,omitempty"`
	FormName  any    `json:"form_name,omitempty"`
	FormID    any    `json:"form_id,omitempty"`
	CreatedAt any    `json:"created_at,omitempty"`
	Data      Fields `json:"data"`
}

// RelayPayload is the object sent to the CRM. Named contact fields are pointers
// so a submitted empty value is still emitted.
type RelayPayload struct {
	ID          any     `json:"id,omitempty"`
	SiteURL     any     `json:"site_url,omitempty"`
	FormName    any     `json:"form_name,omitempty"`
	FormID      any     `json:"form_id,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Mobile      *string `json:"mobile,omitempty"`
	Subject     *string `json:"subject,omitempty"`
	Message     *string `json:"message,omitempty"`
	UTMSource   *string `json:"utm_source,omitempty"`
	UTMMedium   *string `json:"utm_medium,omitempty"`
	UTMCampaign *string `json:"utm_campaign,omitempty"`
	UTMTerm     *string `json:"utm_term,omitempty"`
	UTMContent  *string `json:"utm_content,omitempty"`
	CreatedAt   any     `json:"created_at,omitempty"`
	Notes       string  `json:"notes"`
}

// Field is one key/value pair of the submission data.
type Field struct {
	Key   string
	Value any
}

// Fields is a JSON object that keeps its keys in document order.
type Fields []Field

// Get returns the value stored under key.
func (f Fields) Get(key string) (any, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key in place, or appends it.
func (f *Fields) Set(key string, value any) {
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Key: key, Value: value})
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, fmt.Errorf("error encoding field %q: %w", field.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Fields) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("submission data must be a JSON object")
	}

	fields := Fields{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in submission data", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("error decoding field %q: %w", key, err)
		}
		// A repeated key keeps its first position and its last value.
		fields.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*f = fields
	return nil
}
