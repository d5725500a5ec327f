package services

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contact-relay/pkg/config"
	"contact-relay/pkg/models"
	"contact-relay/pkg/utils"
	"contact-relay/pkg/validation"
)

var (
	ErrSpam        = errors.New("honeypot field filled")
	ErrUnknownForm = errors.New("unknown form")
)

// ValidationError lists the rejected fields of a submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid fields: %s", strings.Join(names, ", "))
}

// IntakeService turns a browser form post into a submission payload, the way the
// hosting platform does before triggering the relay
type IntakeService interface {
	Accept(values url.Values) (models.SubmissionPayload, error)
}

type intakeServiceImpl struct {
	validator *validation.Validator
	config    *config.Config
	log       *zap.Logger
	newID     func() string
	now       func() time.Time
}

// NewIntakeService creates a new intake service
func NewIntakeService(v *validation.Validator, cfg *config.Config, logger *zap.Logger) IntakeService {
	return &intakeServiceImpl{
		validator: v,
		config:    cfg,
		log:       logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Accept checks the honeypot, the form identity and the field rules, then builds
// the payload handed to the relay.
func (s *intakeServiceImpl) Accept(values url.Values) (models.SubmissionPayload, error) {
	if values.Get(models.FieldBotField) != "" {
		s.log.Info("dropping submission with filled honeypot")
		return models.SubmissionPayload{}, ErrSpam
	}
	if name := values.Get(models.FieldFormName); name != s.config.FormName {
		return models.SubmissionPayload{}, fmt.Errorf("%w: %q", ErrUnknownForm, name)
	}

	form := models.ContactFormFromValues(values)
	if errs := s.validator.Validate(form); len(errs) > 0 {
		return models.SubmissionPayload{}, &ValidationError{Fields: errs}
	}

	payload := models.SubmissionPayload{
		ID:        s.newID(),
		SiteURL:   s.config.SiteURL,
		FormName:  s.config.FormName,
		FormID:    s.config.FormID,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		Data:      submissionData(values),
	}

	s.log.Info("accepted submission",
		zap.Any("id", payload.ID),
		zap.String("email_hash", utils.HashEmail(form.Email)),
	)
	return payload, nil
}

var canonicalOrder = append(append([]string{}, models.ContactFields...),
	models.FieldUTMSource,
	models.FieldUTMMedium,
	models.FieldUTMCampaign,
	models.FieldUTMTerm,
	models.FieldUTMContent,
)

// submissionData keeps every posted field except the hidden ones: known fields
// first in form order, then the rest sorted by name. Repeated keys are joined.
func submissionData(values url.Values) models.Fields {
	data := models.Fields{}
	seen := map[string]bool{
		models.FieldFormName: true,
		models.FieldBotField: true,
	}

	for _, key := range canonicalOrder {
		if _, ok := values[key]; ok {
			data.Set(key, models.JoinedValue(values, key))
			seen[key] = true
		}
	}

	var extras []string
	for key := range values {
		if !seen[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		data.Set(key, models.JoinedValue(values, key))
	}
	return data
}
