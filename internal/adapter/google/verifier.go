package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"custodial-wallet/internal/core/ports"
)

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Verifier implements ports.IdentityVerifier against Google's tokeninfo
// endpoint.
type Verifier struct {
	tokenInfoURL string
	clientID     string
	httpClient   HTTPClient
}

// NewVerifier creates a Google ID token verifier. clientID, when non-empty,
// is checked against the token's audience.
func NewVerifier(clientID string, httpClient HTTPClient) *Verifier {
	return &Verifier{
		tokenInfoURL: defaultTokenInfoURL,
		clientID:     clientID,
		httpClient:   httpClient,
	}
}

// NewVerifierWithURL creates a verifier against a custom tokeninfo endpoint.
// Used in tests.
func NewVerifierWithURL(tokenInfoURL, clientID string, httpClient HTTPClient) *Verifier {
	return &Verifier{
		tokenInfoURL: tokenInfoURL,
		clientID:     clientID,
		httpClient:   httpClient,
	}
}

type tokenInfo struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

// Verify validates a Google ID token and returns the external identity it
// asserts.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*ports.ExternalIdentity, error) {
	endpoint := v.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tokeninfo: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read tokeninfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo response: %w", err)
	}

	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("tokeninfo response missing subject or email")
	}
	if v.clientID != "" && info.Aud != v.clientID {
		return nil, fmt.Errorf("token audience mismatch")
	}

	return &ports.ExternalIdentity{
		GoogleID: info.Sub,
		Email:    info.Email,
		Name:     info.Name,
	}, nil
}
