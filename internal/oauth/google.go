package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/models"
)

var googleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// googleEndpoints holds the provider URLs; tests point them at local servers.
type googleEndpoints struct {
	Authorize string
	Token     string
	Userinfo  string
}

func defaultGoogleEndpoints() googleEndpoints {
	return googleEndpoints{
		Authorize: "https://accounts.google.com/o/oauth2/v2/auth",
		Token:     "https://oauth2.googleapis.com/token",
		Userinfo:  "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// GoogleAdapter implements the Google OAuth2 flow.
type GoogleAdapter struct {
	cfg       Config
	endpoints googleEndpoints
	client    *http.Client
}

// NewGoogleAdapter creates a Google adapter from app credentials.
func NewGoogleAdapter(cfg Config) *GoogleAdapter {
	return &GoogleAdapter{
		cfg:       cfg,
		endpoints: defaultGoogleEndpoints(),
		client:    newHTTPClient(),
	}
}

// Name returns the provider identifier.
func (g *GoogleAdapter) Name() string {
	return models.ProviderGoogle
}

// BuildAuthURL returns the Google authorize URL carrying the signed state.
func (g *GoogleAdapter) BuildAuthURL(stateToken string) string {
	params := url.Values{}
	params.Set("client_id", g.cfg.ClientID)
	params.Set("redirect_uri", g.cfg.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(googleScopes, " "))
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	params.Set("state", stateToken)

	return g.endpoints.Authorize + "?" + params.Encode()
}

type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleCallback exchanges the authorization code and fetches the profile.
func (g *GoogleAdapter) HandleCallback(ctx context.Context, code string) (*NormalizedIdentity, error) {
	if code == "" {
		return nil, auth.Errorf(auth.ErrUnauthorized, "missing authorization code")
	}

	accessToken, err := g.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var profile googleProfile
	err = getJSON(ctx, g.client, g.endpoints.Userinfo, accessToken,
		auth.Errorf(auth.ErrInternal, "google profile fetch failed"), &profile)
	if err != nil {
		return nil, err
	}

	if profile.ID == "" || profile.Email == "" {
		return nil, auth.Errorf(auth.ErrBadRequest, "incomplete user data from google")
	}

	return &NormalizedIdentity{
		ProviderAccountID: profile.ID,
		Email:             profile.Email,
		Name:              nameOrLocalPart(profile.Name, profile.Email),
	}, nil
}

func (g *GoogleAdapter) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", g.cfg.ClientID)
	form.Set("client_secret", g.cfg.ClientSecret)
	form.Set("redirect_uri", g.cfg.RedirectURI)

	var result struct {
		AccessToken string `json:"access_token"`
	}
	err := postForm(ctx, g.client, g.endpoints.Token, form,
		auth.Errorf(auth.ErrUnauthorized, "google rejected authorization code"), &result)
	if err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", auth.Errorf(auth.ErrUnauthorized, "google token response missing access token")
	}
	return result.AccessToken, nil
}
