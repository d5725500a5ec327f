package models

import (
	"encoding/json"
	"testing"
)

func TestFields_KeepsDocumentOrder(t *testing.T) {
	var f Fields
	if err := json.Unmarshal([]byte(`{"zeta":"1","alpha":2,"mid":{"a":true}}`), &f); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	wantKeys := []string{"zeta", "alpha", "mid"}
	if len(f) != len(wantKeys) {
		t.Fatalf("got %d fields, want %d", len(f), len(wantKeys))
	}
	for i, key := range wantKeys {
		if f[i].Key != key {
			t.Errorf("field %d key = %q, want %q", i, f[i].Key, key)
		}
	}
	if n, ok := f[1].Value.(json.Number); !ok || n.String() != "2" {
		t.Errorf("alpha = %#v, want json.Number 2", f[1].Value)
	}

	out, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"zeta":"1","alpha":2,"mid":{"a":true}}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestFields_RepeatedKey(t *testing.T) {
	var f Fields
	if err := json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &f); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(f) != 2 || f[0].Key != "a" || f[0].Value != "3" {
		t.Errorf("got %#v, want a=3 first", f)
	}
}

func TestFields_NullAndInvalid(t *testing.T) {
	var ev SubmissionEvent
	if err := json.Unmarshal([]byte(`{"payload":{"id":"1","data":null}}`), &ev); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ev.Payload == nil || ev.Payload.Data != nil {
		t.Errorf("null data decoded as %#v", ev.Payload)
	}

	var f Fields
	if err := json.Unmarshal([]byte(`["a"]`), &f); err == nil {
		t.Error("array data should be rejected")
	}
}

func TestFields_Get(t *testing.T) {
	f := Fields{{Key: "email", Value: "a@b.com"}}
	if v, ok := f.Get("email"); !ok || v != "a@b.com" {
		t.Errorf("Get(email) = %v, %v", v, ok)
	}
	if _, ok := f.Get("phone"); ok {
		t.Error("Get(phone) reported a missing key as present")
	}
}

func TestContactForm_GetSet(t *testing.T) {
	f := NewContactForm("contact")
	if f.FormName != "contact" {
		t.Errorf("FormName = %q, want contact", f.FormName)
	}
	if !f.Set(FieldPhone, "0123") {
		t.Fatal("Set(phone) returned false")
	}
	if v, _ := f.Get(FieldPhone); v != "0123" {
		t.Errorf("Get(phone) = %q", v)
	}
	if f.Set("fax", "1") {
		t.Error("Set(fax) should report an unknown field")
	}
}

func TestContactForm_ValuesRoundTrip(t *testing.T) {
	f := NewContactForm("contact")
	f.FirstName = "Ada"
	f.Email = "ada@example.com"

	v := f.Values()
	if v.Get(FieldBotField) != "" || !v.Has(FieldBotField) {
		t.Error("bot-field should be serialized empty")
	}

	back := ContactFormFromValues(v)
	if back != f {
		t.Errorf("round trip = %#v, want %#v", back, f)
	}
}

func TestAttribution_Values(t *testing.T) {
	a := Attribution{Source: "newsletter", Campaign: "spring"}
	v := a.Values()
	if v.Get(FieldUTMSource) != "newsletter" || v.Get(FieldUTMCampaign) != "spring" {
		t.Errorf("Values() = %v", v)
	}
	if v.Has(FieldUTMMedium) {
		t.Error("absent utm_medium should be omitted")
	}
}
