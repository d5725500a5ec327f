package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"contact-relay/pkg/clients/crm"
	"contact-relay/pkg/models"
	"contact-relay/pkg/utils"
)

var (
	ErrMissingBody    = errors.New("missing request body")
	ErrMissingPayload = errors.New("missing payload")
	ErrMalformedBody  = errors.New("malformed request body")
)

// RelayService forwards form submissions to the CRM
type RelayService interface {
	Relay(ctx context.Context, payload models.SubmissionPayload) (json.RawMessage, error)
}

type relayServiceImpl struct {
	crmClient crm.Client
	log       *zap.Logger
}

// NewRelayService creates a new relay service
func NewRelayService(crmClient crm.Client, logger *zap.Logger) RelayService {
	return &relayServiceImpl{
		crmClient: crmClient,
		log:       logger,
	}
}

// ParseSubmissionEvent extracts the payload from a platform event body.
func ParseSubmissionEvent(body []byte) (models.SubmissionPayload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.SubmissionPayload{}, ErrMissingBody
	}

	var event models.SubmissionEvent
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&event); err != nil {
		return models.SubmissionPayload{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if event.Payload == nil {
		return models.SubmissionPayload{}, ErrMissingPayload
	}
	return *event.Payload, nil
}

// Relay reshapes the submission and posts it to the CRM, returning the CRM response.
func (s *relayServiceImpl) Relay(ctx context.Context, payload models.SubmissionPayload) (json.RawMessage, error) {
	out := BuildRelayPayload(payload)

	email := ""
	if out.Email != nil {
		email = *out.Email
	}
	s.log.Info("relaying submission",
		zap.Any("id", out.ID),
		zap.Any("form_name", out.FormName),
		zap.String("email_hash", utils.HashEmail(email)),
	)

	body, err := s.crmClient.CreateContact(ctx, out)
	if err != nil {
		return nil, fmt.Errorf("error relaying submission: %w", err)
	}

	s.log.Info("submission relayed", zap.Any("id", out.ID))
	return crmResponse(body), nil
}

// BuildRelayPayload maps the known contact fields by name and folds every other
// data key into notes, one "key: value" line each, in submission order.
func BuildRelayPayload(p models.SubmissionPayload) models.RelayPayload {
	out := models.RelayPayload{
		ID:        p.ID,
		SiteURL:   p.SiteURL,
		FormName:  p.FormName,
		FormID:    p.FormID,
		CreatedAt: p.CreatedAt,
	}

	named := map[string]**string{
		models.FieldFirstName:   &out.FirstName,
		models.FieldLastName:    &out.LastName,
		models.FieldEmail:       &out.Email,
		models.FieldPhone:       &out.Phone,
		models.FieldMobile:      &out.Mobile,
		models.FieldSubject:     &out.Subject,
		models.FieldMessage:     &out.Message,
		models.FieldUTMSource:   &out.UTMSource,
		models.FieldUTMMedium:   &out.UTMMedium,
		models.FieldUTMCampaign: &out.UTMCampaign,
		models.FieldUTMTerm:     &out.UTMTerm,
		models.FieldUTMContent:  &out.UTMContent,
	}

	var notes []string
	for _, field := range p.Data {
		if dst, ok := named[field.Key]; ok {
			v := stringify(field.Value)
			*dst = &v
			continue
		}
		notes = append(notes, field.Key+": "+stringify(field.Value))
	}
	out.Notes = strings.Join(notes, "\n")

	return out
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// crmResponse keeps a JSON CRM body as is and quotes anything else.
func crmResponse(body []byte) json.RawMessage {
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage(`null`)
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
