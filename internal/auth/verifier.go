package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// VerifiedUser is the identity returned by the external verifier. This
// service never mints or decodes user tokens itself.
type VerifiedUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid bool         `json:"valid"`
	User  VerifiedUser `json:"user"`
}

type Verifier struct {
	client  *http.Client
	baseURL string
}

func NewVerifier(baseURL string) *Verifier {
	return &Verifier{
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
		baseURL: baseURL,
	}
}

var defaultVerifier *Verifier

func InitVerifier() error {
	baseURL := os.Getenv("AUTH_VERIFIER_URL")

	if baseURL == "" {
		return fmt.Errorf("AUTH_VERIFIER_URL environment variable is not set")
	}

	defaultVerifier = NewVerifier(baseURL)
	return nil
}

// VerifyToken checks the bearer token against the configured verifier.
func VerifyToken(ctx context.Context, token string) (*VerifiedUser, error) {
	if defaultVerifier == nil {
		return nil, fmt.Errorf("auth verifier is not configured")
	}

	return defaultVerifier.Verify(ctx, token)
}

func (v *Verifier) Verify(ctx context.Context, token string) (*VerifiedUser, error) {
	body, err := json.Marshal(verifyRequest{Token: token})

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/verify", bytes.NewBuffer(body))

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verifier returned status %d", resp.StatusCode)
	}

	var result verifyResponse

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if !result.Valid {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	return &result.User, nil
}
