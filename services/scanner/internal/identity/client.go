// Package identity talks to the upstream identity/attendance service. All
// transport and application failures of the validate call degrade into a
// failed ValidationOutcome with a displayable message, so callers never need
// error handling just to get something to show the operator.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

const genericFailureMessage = "unable to validate code"

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests, custom timeouts).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks one credential against the identity service. Failures of
// any kind come back as ValidationOutcome{Valid: false}; a malformed or
// empty response body degrades to a generic message rather than a crash.
func (c *Client) Validate(ctx context.Context, cred domain.Credential) domain.ValidationOutcome {
	reqBody := validateRequest{QRValue: qrValueFrom(cred)}

	var env validateEnvelope
	if err := c.postJSON(ctx, "/validate", reqBody, &env); err != nil {
		return domain.Invalid(genericFailureMessage)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = genericFailureMessage
		}
		return domain.Invalid(msg)
	}
	if env.Data == nil {
		return domain.Invalid(genericFailureMessage)
	}
	return env.Data.toOutcome(cred)
}

// CheckinRequest is the attendance call for an event as a whole (empty
// AgendaID) or one agenda slot.
type CheckinRequest struct {
	Type         domain.CredentialType
	AgendaID     string
	Token        string
	EventID      string
	MembershipID string
}

// CheckinAck is the acknowledged result of a check-in call.
// AlreadyCheckedIn marks the duplicate-attendance response, which callers
// treat as success.
type CheckinAck struct {
	Message          string
	AlreadyCheckedIn bool
}

// CheckIn submits one attendance record. On failure the returned error
// carries the most specific message available: the server's message when
// present, a synthesized "HTTP <status> <text>" otherwise.
func (c *Client) CheckIn(ctx context.Context, req CheckinRequest) (CheckinAck, error) {
	body := checkinWire{
		Type:         string(req.Type),
		Token:        req.Token,
		EventID:      req.EventID,
		MembershipID: req.MembershipID,
	}
	if req.AgendaID != "" {
		body.AgendaID = &req.AgendaID
	}

	status, raw, err := c.post(ctx, "/check-in", body)
	if err != nil {
		return CheckinAck{}, fmt.Errorf("check-in request: %w", err)
	}

	var env checkinEnvelope
	decoded := json.Unmarshal(raw, &env) == nil && (env.Success || env.Message != "")

	if status < 200 || status > 299 {
		if decoded && env.Message != "" {
			if isAlreadyCheckedIn(status, env.Message) {
				return CheckinAck{Message: env.Message, AlreadyCheckedIn: true}, nil
			}
			return CheckinAck{}, fmt.Errorf("%s", env.Message)
		}
		return CheckinAck{}, fmt.Errorf("HTTP %d %s", status, http.StatusText(status))
	}

	if !decoded {
		return CheckinAck{}, fmt.Errorf("HTTP %d %s", status, http.StatusText(status))
	}
	if !env.Success {
		if isAlreadyCheckedIn(status, env.Message) {
			return CheckinAck{Message: env.Message, AlreadyCheckedIn: true}, nil
		}
		msg := env.Message
		if msg == "" {
			msg = genericFailureMessage
		}
		return CheckinAck{}, fmt.Errorf("%s", msg)
	}
	return CheckinAck{Message: env.Message}, nil
}

func isAlreadyCheckedIn(status int, message string) bool {
	return status == http.StatusConflict ||
		strings.Contains(strings.ToLower(message), "already checked in")
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	status, raw, err := c.post(ctx, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		// The validate endpoint reports application failures inside a 2xx
		// envelope; anything else is a transport-level failure.
		var env validateEnvelope
		if json.Unmarshal(raw, &env) == nil && env.Message != "" {
			if v, ok := out.(*validateEnvelope); ok {
				*v = env
				v.Success = false
				return nil
			}
		}
		return fmt.Errorf("HTTP %d %s", status, http.StatusText(status))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}
