package auth

import (
	"context"
	"errors"
	"log"

	"github.com/authgate/authgate/internal/models"
)

// Auth types reported back to callers.
const (
	AuthTypeLocal = "local"
	AuthTypeOAuth = "oauth"
)

// Registration is the input to the register use case. Password is plaintext
// and only set for local registrations; the orchestrator hashes it before
// reconciliation.
type Registration struct {
	Email             string
	Name              string
	Password          string
	Provider          string
	ProviderAccountID string
	Plan              string
}

// Result is the outcome of a login or registration, ready for the transport
// layer. The token travels in the session cookie, never in the body.
type Result struct {
	Client    ClientView `json:"client"`
	Token     string     `json:"-"`
	AuthType  string     `json:"authType"`
	Message   string     `json:"message"`
	IsNewUser bool       `json:"isNewUser"`
}

// Orchestrator composes the credential verifier, the identity reconciler and
// the token issuer into the login and register use cases. It is the only
// component aware of both authentication paths.
type Orchestrator struct {
	verifier   *CredentialVerifier
	reconciler *IdentityReconciler
	issuer     *TokenIssuer
}

// NewOrchestrator wires the use cases together.
func NewOrchestrator(verifier *CredentialVerifier, reconciler *IdentityReconciler, issuer *TokenIssuer) *Orchestrator {
	return &Orchestrator{verifier: verifier, reconciler: reconciler, issuer: issuer}
}

// Login authenticates a client with local credentials and issues a session token.
func (o *Orchestrator) Login(ctx context.Context, email, password string) (*Result, error) {
	client, err := o.verifier.Login(ctx, email, password)
	if err != nil {
		return nil, wrapUnexpected("login", err)
	}

	token, err := o.issuer.Issue(client)
	if err != nil {
		return nil, wrapUnexpected("login", err)
	}

	return &Result{
		Client:    Sanitize(client),
		Token:     token,
		AuthType:  AuthTypeLocal,
		Message:   "Login successful",
		IsNewUser: false,
	}, nil
}

// Register runs a local or provider registration through the reconciler and
// issues a session token for whichever client came out of it.
func (o *Orchestrator) Register(ctx context.Context, reg Registration) (*Result, error) {
	req := RegistrationRequest{
		Email:             reg.Email,
		Name:              reg.Name,
		Provider:          reg.Provider,
		ProviderAccountID: reg.ProviderAccountID,
		Plan:              reg.Plan,
	}

	if reg.Provider == models.ProviderLocal {
		if reg.Password == "" {
			return nil, Errorf(ErrBadRequest, "password is required")
		}
		if err := ValidatePasswordStrength(reg.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(reg.Password)
		if err != nil {
			return nil, wrapUnexpected("register", err)
		}
		req.PasswordHash = &hash
	}

	outcome, err := o.reconciler.Reconcile(ctx, req)
	if err != nil {
		return nil, wrapUnexpected("register", err)
	}

	token, err := o.issuer.Issue(outcome.Client)
	if err != nil {
		return nil, wrapUnexpected("register", err)
	}

	return &Result{
		Client:    Sanitize(outcome.Client),
		Token:     token,
		AuthType:  authTypeFor(reg.Provider),
		Message:   outcomeMessage(outcome.Kind),
		IsNewUser: outcome.IsNewClient(),
	}, nil
}

func authTypeFor(provider string) string {
	if provider == models.ProviderLocal {
		return AuthTypeLocal
	}
	return AuthTypeOAuth
}

func outcomeMessage(kind OutcomeKind) string {
	switch kind {
	case OutcomeNewClient:
		return "Registration successful"
	case OutcomeAccountLinked:
		return "Account linked successfully"
	case OutcomeExistingAccountLogin:
		return "Login successful"
	case OutcomePasswordClaimed:
		return "Password set successfully"
	default:
		return ""
	}
}

// wrapUnexpected lets domain errors pass through unchanged and collapses
// everything else into a generic internal error, logging the original.
func wrapUnexpected(op string, err error) error {
	for _, sentinel := range []error{ErrNotFound, ErrUnauthorized, ErrConflict, ErrBadRequest, ErrInternal} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	log.Printf("Auth: unexpected %s error: %v", op, err)
	return Errorf(ErrInternal, "authentication service temporarily unavailable")
}
