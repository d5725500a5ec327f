package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contact-relay/pkg/attribution"
	"contact-relay/pkg/config"
	"contact-relay/pkg/form"
	"contact-relay/pkg/models"
	"contact-relay/pkg/services"
	"contact-relay/pkg/validation"
)

const (
	maxFormBytes  = 64 << 10
	maxEventBytes = 1 << 20

	relayFailedMessage = "Failed fetching data"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	relayService  services.RelayService
	intakeService services.IntakeService
	validator     *validation.Validator
	config        *config.Config
	log           *zap.Logger

	// dispatch hands an accepted submission to the relay without blocking the response.
	dispatch func(models.SubmissionPayload)
	relays   sync.WaitGroup
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	relayService services.RelayService,
	intakeService services.IntakeService,
	v *validation.Validator,
	cfg *config.Config,
	logger *zap.Logger,
) *Handlers {
	h := &Handlers{
		relayService:  relayService,
		intakeService: intakeService,
		validator:     v,
		config:        cfg,
		log:           logger,
	}
	h.dispatch = h.relayInBackground
	return h
}

// RegisterRoutes wires the handlers onto router.
func (h *Handlers) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.HealthCheck)
	router.GET("/form", h.HandleFormDefinition)
	router.POST("/", h.HandleFormSubmission)
	router.POST("/functions/submission-created", h.HandleSubmissionCreated)
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// HandleFormDefinition serves what the page needs for its first render: the form
// setup, its initial state and the captured attribution.
func (h *Handlers) HandleFormDefinition(c *gin.Context) {
	query := c.Request.URL.Query()
	attribution.Remember(c.Writer, query, h.config.UTMCookieMaxAge)

	st := form.New(h.validator, h.config.FormName)

	c.JSON(http.StatusOK, gin.H{
		"title":       h.config.FormTitle,
		"form_name":   h.config.FormName,
		"subjects":    h.validator.Subjects(),
		"fields":      models.ContactFields,
		"values":      st.Values(),
		"state":       st.Result(),
		"attribution": attribution.FromRequest(c.Request),
	})
}

// HandleFormSubmission accepts the url-encoded browser post, answers right away and
// triggers the relay in the background
func (h *Handlers) HandleFormSubmission(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBytes)
	if err := c.Request.ParseForm(); err != nil {
		h.log.Warn("error parsing form body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading request"})
		return
	}

	payload, err := h.intakeService.Accept(c.Request.PostForm)

	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrSpam):
		// Bots get the same answer as people.
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Form submission received"})
		return
	case errors.Is(err, services.ErrUnknownForm):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown form"})
		return
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "fields": validationErr.Fields})
		return
	case err != nil:
		h.log.Error("error accepting submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.dispatch(payload)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Form submission received and processing",
	})
}

// HandleSubmissionCreated is the relay function: it forwards one submission event
// to the CRM and passes the CRM answer back
func (h *Handlers) HandleSubmissionCreated(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxEventBytes))
		if err != nil {
			h.log.Warn("error reading request body", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading request"})
			return
		}
	}

	payload, err := services.ParseSubmissionEvent(body)
	switch {
	case errors.Is(err, services.ErrMissingBody):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing request body"})
		return
	case errors.Is(err, services.ErrMissingPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing payload"})
		return
	case err != nil:
		h.log.Error("error parsing submission event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": relayFailedMessage})
		return
	}

	response, err := h.relayService.Relay(c.Request.Context(), payload)
	if err != nil {
		h.log.Error("error relaying submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": relayFailedMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": response})
}

func (h *Handlers) relayInBackground(payload models.SubmissionPayload) {
	h.relays.Add(1)
	go func() {
		defer h.relays.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.config.RelayTimeout)
		defer cancel()

		if _, err := h.relayService.Relay(ctx, payload); err != nil {
			h.log.Error("background relay failed", zap.Any("id", payload.ID), zap.Error(err))
		}
	}()
}

// Wait blocks until every background relay has finished or ctx is done. Call it
// after the HTTP server has stopped accepting submissions.
func (h *Handlers) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.relays.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
