package api

import (
	"log"
	"net/http"
	"net/url"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/oauth"
)

// HandleOAuthAuthorize redirects the browser to the provider authorize URL
// with a freshly signed state token.
func HandleOAuthAuthorize(adapter oauth.Adapter, states *auth.StateTokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := states.Issue()
		if err != nil {
			log.Printf("OAuth: Failed to issue state for %s: %v", adapter.Name(), err)
			writeError(w, err)
			return
		}

		log.Printf("OAuth: Redirecting to %s authorization URL", adapter.Name())
		http.Redirect(w, r, adapter.BuildAuthURL(state), http.StatusFound)
	}
}

// HandleOAuthCallback verifies the redirect state, normalizes the provider
// identity, runs it through registration reconciliation, sets the session
// cookie and sends the browser back to the front end.
func HandleOAuthCallback(adapter oauth.Adapter, states *auth.StateTokenManager, orch *auth.Orchestrator, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := states.Verify(r.URL.Query().Get("state")); err != nil {
			log.Printf("OAuth: %s callback with invalid state", adapter.Name())
			writeProviderError(w, adapter.Name(), err)
			return
		}

		identity, err := adapter.HandleCallback(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			log.Printf("OAuth: %s callback failed: %v", adapter.Name(), err)
			writeProviderError(w, adapter.Name(), err)
			return
		}

		result, err := orch.Register(r.Context(), auth.Registration{
			Email:             identity.Email,
			Name:              identity.Name,
			Provider:          adapter.Name(),
			ProviderAccountID: identity.ProviderAccountID,
		})
		if err != nil {
			log.Printf("OAuth: %s reconciliation failed: %v", adapter.Name(), err)
			writeProviderError(w, adapter.Name(), err)
			return
		}

		log.Printf("OAuth: %s authentication complete (new user: %t)", adapter.Name(), result.IsNewUser)

		setSessionCookie(w, result.Token, cfg)
		http.Redirect(w, r, callbackRedirectURL(cfg.FrontendOrigin, result), http.StatusFound)
	}
}

// callbackRedirectURL points the browser at the front-end origin with just
// enough context to finish the flow client-side.
func callbackRedirectURL(origin string, result *auth.Result) string {
	params := url.Values{}
	params.Set("auth", result.AuthType)
	if result.IsNewUser {
		params.Set("new_user", "true")
	}
	return origin + "/auth/callback?" + params.Encode()
}

// writeProviderError responds with the mapped status and a provider-prefixed
// safe message.
func writeProviderError(w http.ResponseWriter, provider string, err error) {
	writeJSON(w, auth.StatusCode(err), map[string]string{
		"provider": provider,
		"error":    auth.Message(err),
	})
}
