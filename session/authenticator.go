package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
)

// User-displayable login failure messages
const (
	MessageMissingCredentials = "Please enter your email and password."
	MessageInvalidCredentials = "Invalid email or password."
	MessageNetworkFailure     = "Unable to reach the server, please try again."
	MessageUnexpectedResponse = "Unexpected response from the server, please try again."
)

// LoginRequest is the credential payload sent to the authentication collaborator
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is what the authentication collaborator returns on success
type LoginResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// Authenticator exchanges credentials for a session token
type Authenticator interface {
	Authenticate(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

// LoginError is a login failure carrying a message fit for display.
// Kind is errors.ErrAuthRejected or errors.ErrNetworkFailure.
type LoginError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Kind
}

func rejected(message string, cause error) *LoginError {
	if message == "" {
		message = MessageInvalidCredentials
	}
	return &LoginError{Kind: apperrors.ErrAuthRejected, Message: message, Cause: cause}
}

func networkFailure(message string, cause error) *LoginError {
	if message == "" {
		message = MessageNetworkFailure
	}
	return &LoginError{Kind: apperrors.ErrNetworkFailure, Message: message, Cause: cause}
}

// asLoginError classifies any collaborator error into a LoginError
func asLoginError(err error) *LoginError {
	var loginErr *LoginError
	if apperrors.As(err, &loginErr) {
		return loginErr
	}
	if apperrors.Is(err, apperrors.ErrAuthRejected) {
		return rejected("", err)
	}
	return networkFailure("", err)
}

// HTTPAuthenticator posts credentials as JSON to the backend login endpoint
type HTTPAuthenticator struct {
	loginURL string
	client   *http.Client
}

var _ Authenticator = (*HTTPAuthenticator)(nil)

func NewHTTPAuthenticator(loginURL string, client *http.Client) *HTTPAuthenticator {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAuthenticator{
		loginURL: loginURL,
		client:   client,
	}
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (a *HTTPAuthenticator) Authenticate(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, networkFailure("", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURL, bytes.NewReader(body))
	if err != nil {
		return nil, networkFailure("", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, networkFailure("", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, networkFailure("", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		_ = json.Unmarshal(payload, &errResp)
		message := errResp.Message
		if message == "" {
			message = errResp.Error
		}
		return nil, rejected(message, fmt.Errorf("login returned status %d", resp.StatusCode))
	}

	var result LoginResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, networkFailure(MessageUnexpectedResponse, err)
	}
	if result.Token == "" {
		return nil, networkFailure(MessageUnexpectedResponse, fmt.Errorf("login response has no token"))
	}
	return &result, nil
}
