// Package oauth implements the provider adapters that turn an OAuth
// authorization-code callback into a normalized identity. Adapters are
// stateless: every call takes its parameters as arguments and nothing
// credential-shaped is kept between requests.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/authgate/authgate/internal/auth"
)

// providerTimeout bounds every provider API call. A timed-out exchange or
// profile fetch surfaces as an internal error; callers may retry, we do not.
const providerTimeout = 15 * time.Second

// NormalizedIdentity is the canonical tuple every provider callback reduces to.
type NormalizedIdentity struct {
	ProviderAccountID string
	Email             string
	Name              string
}

// Adapter is implemented once per provider.
type Adapter interface {
	// Name returns the provider identifier ("google", "github").
	Name() string
	// BuildAuthURL returns the provider authorize URL embedding the signed
	// state token as the state query parameter.
	BuildAuthURL(stateToken string) string
	// HandleCallback exchanges the authorization code and fetches the profile.
	HandleCallback(ctx context.Context, code string) (*NormalizedIdentity, error)
}

// Config holds the per-provider OAuth application credentials.
type Config struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: providerTimeout}
}

// postForm posts form values and decodes the JSON response into out. A non-OK
// status becomes rejected, wrapped with the response code.
func postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values, rejected error, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return auth.Errorf(auth.ErrInternal, "failed to create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return doJSON(client, req, rejected, out)
}

// getJSON performs an authorized GET and decodes the JSON response into out.
func getJSON(ctx context.Context, client *http.Client, endpoint, accessToken string, rejected error, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return auth.Errorf(auth.ErrInternal, "failed to create profile request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	return doJSON(client, req, rejected, out)
}

func doJSON(client *http.Client, req *http.Request, rejected error, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return auth.Errorf(auth.ErrInternal, "provider request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w (status %d)", rejected, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return auth.Errorf(auth.ErrInternal, "failed to decode provider response")
	}
	return nil
}

// nameOrLocalPart falls back to the local part of the email when the
// provider returned no display name.
func nameOrLocalPart(name, email string) string {
	if name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
