package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/models"
)

type githubEndpoints struct {
	Authorize string
	Token     string
	User      string
	Emails    string
}

func defaultGithubEndpoints() githubEndpoints {
	return githubEndpoints{
		Authorize: "https://github.com/login/oauth/authorize",
		Token:     "https://github.com/login/oauth/access_token",
		User:      "https://api.github.com/user",
		Emails:    "https://api.github.com/user/emails",
	}
}

// GithubAdapter implements the GitHub OAuth2 flow. GitHub does not guarantee
// an email in the profile response, so the adapter does a secondary fetch of
// the email list and picks the primary verified entry.
type GithubAdapter struct {
	cfg       Config
	endpoints githubEndpoints
	client    *http.Client
}

// NewGithubAdapter creates a GitHub adapter from app credentials.
func NewGithubAdapter(cfg Config) *GithubAdapter {
	return &GithubAdapter{
		cfg:       cfg,
		endpoints: defaultGithubEndpoints(),
		client:    newHTTPClient(),
	}
}

// Name returns the provider identifier.
func (g *GithubAdapter) Name() string {
	return models.ProviderGithub
}

// BuildAuthURL returns the GitHub authorize URL carrying the signed state.
func (g *GithubAdapter) BuildAuthURL(stateToken string) string {
	params := url.Values{}
	params.Set("client_id", g.cfg.ClientID)
	params.Set("redirect_uri", g.cfg.RedirectURI)
	params.Set("scope", "read:user user:email")
	params.Set("allow_signup", "true")
	params.Set("state", stateToken)

	return g.endpoints.Authorize + "?" + params.Encode()
}

type githubUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// HandleCallback exchanges the authorization code, fetches the user profile
// and resolves the primary verified email.
func (g *GithubAdapter) HandleCallback(ctx context.Context, code string) (*NormalizedIdentity, error) {
	if code == "" {
		return nil, auth.Errorf(auth.ErrUnauthorized, "missing authorization code")
	}

	accessToken, err := g.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var user githubUser
	err = getJSON(ctx, g.client, g.endpoints.User, accessToken,
		auth.Errorf(auth.ErrInternal, "github profile fetch failed"), &user)
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, auth.Errorf(auth.ErrBadRequest, "incomplete user data from github")
	}

	email, err := g.primaryVerifiedEmail(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	return &NormalizedIdentity{
		ProviderAccountID: strconv.FormatInt(user.ID, 10),
		Email:             email,
		Name:              nameOrLocalPart(user.Name, email),
	}, nil
}

func (g *GithubAdapter) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", g.cfg.ClientID)
	form.Set("client_secret", g.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", g.cfg.RedirectURI)

	var result struct {
		AccessToken string `json:"access_token"`
	}
	err := postForm(ctx, g.client, g.endpoints.Token, form,
		auth.Errorf(auth.ErrUnauthorized, "github rejected authorization code"), &result)
	if err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", auth.Errorf(auth.ErrUnauthorized, "github token response missing access token")
	}
	return result.AccessToken, nil
}

func (g *GithubAdapter) primaryVerifiedEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []githubEmail
	err := getJSON(ctx, g.client, g.endpoints.Emails, accessToken,
		auth.Errorf(auth.ErrInternal, "github email fetch failed"), &emails)
	if err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", auth.Errorf(auth.ErrBadRequest, "no verified primary email")
}
