package formclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contact-relay/pkg/form"
	"contact-relay/pkg/models"
)

var ErrNotSubmittable = errors.New("form is not submittable")

// Notice messages shown after a submission.
const (
	MessageSuccess       = "Richiesta inviata con successo"
	MessageCommunication = "Errore di comunicazione, riprova tra poco"
	MessageGeneric       = "E' avvenuto un errore"
	MessageUnexpected    = "E' accaduto qualcosa di inatteso"
)

const (
	successAutoHide = 2 * time.Second
	errorAutoHide   = 3 * time.Second
)

type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
)

// Anchor is the screen corner a notice is pinned to.
type Anchor struct {
	Vertical   string `json:"vertical"`
	Horizontal string `json:"horizontal"`
}

var BottomRight = Anchor{Vertical: "bottom", Horizontal: "right"}

// Notice is the message shown to the user once a submission settles.
type Notice struct {
	Variant  Variant       `json:"variant"`
	Message  string        `json:"message"`
	AutoHide time.Duration `json:"auto_hide"`
	Anchor   Anchor        `json:"anchor"`
}

// TransportError reports a failed exchange with the site: the request never got
// an answer, or the answer was not a 2xx.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error posting form: %v", e.Err)
	}
	return fmt.Sprintf("error posting form: status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client posts contact forms to the page that served them
type Client struct {
	baseURL    string
	path       string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPath sets the page path the form posts to. Defaults to "/".
func WithPath(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// NewClient creates a new form client for the site at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       "/",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit merges the form values with attr, posts them once and resets the form on
// success. It never retries; the returned notice tells the user what happened.
func (c *Client) Submit(ctx context.Context, st *form.State, attr models.Attribution) (notice Notice) {
	defer func() {
		if r := recover(); r != nil {
			notice = NoticeFor(r)
		}
	}()

	if !st.Result().Submittable {
		return NoticeFor(ErrNotSubmittable)
	}

	values := st.Values().Values()
	for key, v := range attr.Values() {
		values[key] = v
	}

	if err := c.post(ctx, values.Encode()); err != nil {
		return NoticeFor(err)
	}

	st.Reset()
	return NoticeFor(nil)
}

func (c *Client) post(ctx context.Context, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode}
	}
	return nil
}

// NoticeFor maps a submission outcome to its notice: nil is success, a
// *TransportError a communication problem, any other error a generic failure
// and anything else an unexpected one.
func NoticeFor(outcome any) Notice {
	if outcome == nil {
		return Notice{Variant: VariantSuccess, Message: MessageSuccess, AutoHide: successAutoHide, Anchor: BottomRight}
	}

	msg := MessageUnexpected
	if err, ok := outcome.(error); ok {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			msg = MessageCommunication
		} else {
			msg = MessageGeneric
		}
	}
	return Notice{Variant: VariantError, Message: msg, AutoHide: errorAutoHide, Anchor: BottomRight}
}
