package auth

import (
	"context"
	"errors"
	"log"

	"github.com/authgate/authgate/internal/models"
	"github.com/authgate/authgate/internal/store"
)

// RegistrationRequest is the ephemeral input to reconciliation. PasswordHash
// is already hashed by the orchestrator for local registrations and nil for
// OAuth ones. ProviderAccountID is empty for local registrations.
type RegistrationRequest struct {
	Email             string
	Name              string
	PasswordHash      *string
	Provider          string
	ProviderAccountID string
	Plan              string
}

// OutcomeKind tags which reconciliation case applied.
type OutcomeKind string

const (
	// OutcomeNewClient means a client record was created.
	OutcomeNewClient OutcomeKind = "new_client"
	// OutcomeAccountLinked means a new provider identity was attached to an
	// existing client.
	OutcomeAccountLinked OutcomeKind = "account_linked"
	// OutcomeExistingAccountLogin means the provider identity was already
	// linked; nothing was written.
	OutcomeExistingAccountLogin OutcomeKind = "existing_account_login"
	// OutcomePasswordClaimed means an OAuth-only client set a local password
	// for the first time.
	OutcomePasswordClaimed OutcomeKind = "password_claimed"
)

// Outcome is the result of reconciling a registration request.
type Outcome struct {
	Kind   OutcomeKind
	Client *models.Client
}

// IsNewClient reports whether reconciliation created a client record.
func (o *Outcome) IsNewClient() bool {
	return o.Kind == OutcomeNewClient
}

// IdentityReconciler decides, for an incoming registration, whether to create
// a client, link a provider account to an existing one, claim an OAuth-only
// account with a password, or reject a conflicting registration. All
// multi-record writes run inside one store transaction.
type IdentityReconciler struct {
	store store.ClientStore
}

// NewIdentityReconciler creates a reconciler over the given store.
func NewIdentityReconciler(s store.ClientStore) *IdentityReconciler {
	return &IdentityReconciler{store: s}
}

// Reconcile runs the registration state machine.
func (r *IdentityReconciler) Reconcile(ctx context.Context, req RegistrationRequest) (*Outcome, error) {
	switch req.Provider {
	case models.ProviderLocal:
		return r.reconcileLocal(ctx, req)
	case models.ProviderGoogle, models.ProviderGithub:
		return r.reconcileOAuth(ctx, req)
	default:
		// Input is validated upstream; reaching this means a programming error.
		return nil, Errorf(ErrInternal, "unsupported provider %q", req.Provider)
	}
}

func (r *IdentityReconciler) reconcileLocal(ctx context.Context, req RegistrationRequest) (*Outcome, error) {
	existing, err := r.store.GetClientByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		client, err := r.createClientWithAccount(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Outcome{Kind: OutcomeNewClient, Client: client}, nil
	}

	if existing.HasPassword() {
		return nil, Errorf(ErrConflict, "user already exists")
	}

	// OAuth-only client claiming the account with a local password.
	if req.PasswordHash == nil {
		return nil, Errorf(ErrBadRequest, "password is required")
	}
	log.Printf("Reconcile: OAuth-only client claiming local password: %s", existing.ID)
	claimed, err := r.store.UpdatePassword(ctx, existing.ID, *req.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &Outcome{Kind: OutcomePasswordClaimed, Client: claimed}, nil
}

func (r *IdentityReconciler) reconcileOAuth(ctx context.Context, req RegistrationRequest) (*Outcome, error) {
	existing, err := r.store.GetClientByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return r.linkAccount(ctx, existing, req)
	}

	client, err := r.createClientWithAccount(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Outcome{Kind: OutcomeNewClient, Client: client}, nil
}

// linkAccount attaches the provider identity to client unless it is already
// linked, in which case no write happens and the owning client is returned.
func (r *IdentityReconciler) linkAccount(ctx context.Context, client *models.Client, req RegistrationRequest) (*Outcome, error) {
	account, err := r.store.GetLinkedAccount(ctx, req.Provider, req.ProviderAccountID)
	if err != nil {
		return nil, err
	}

	if account != nil {
		owner := client
		if account.ClientID != client.ID {
			// The provider identity was linked while its email moved to a
			// different client. The link, not the email, identifies the owner.
			owner, err = r.store.GetClientByID(ctx, account.ClientID)
			if err != nil {
				return nil, err
			}
			if owner == nil {
				return nil, Errorf(ErrInternal, "linked account has no client")
			}
		}
		return &Outcome{Kind: OutcomeExistingAccountLogin, Client: owner}, nil
	}

	err = r.store.RunTransaction(ctx, func(tx store.ClientStore) error {
		return tx.CreateLinkedAccount(ctx, &models.LinkedAccount{
			ClientID:          client.ID,
			Provider:          req.Provider,
			ProviderAccountID: req.ProviderAccountID,
		})
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &Outcome{Kind: OutcomeAccountLinked, Client: client}, nil
}

// createClientWithAccount creates the client and its first linked account in
// a single transaction so the pair is committed or rolled back together.
func (r *IdentityReconciler) createClientWithAccount(ctx context.Context, req RegistrationRequest) (*models.Client, error) {
	plan := req.Plan
	if plan == "" {
		plan = "free"
	}
	client := &models.Client{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: req.PasswordHash,
		Plan:         plan,
	}

	err := r.store.RunTransaction(ctx, func(tx store.ClientStore) error {
		if err := tx.CreateClient(ctx, client); err != nil {
			return err
		}

		// Local clients get a linked-account row keyed by their own ID so the
		// (provider, provider_account_id) pair stays unique.
		providerAccountID := req.ProviderAccountID
		if req.Provider == models.ProviderLocal {
			providerAccountID = client.ID
		}

		return tx.CreateLinkedAccount(ctx, &models.LinkedAccount{
			ClientID:          client.ID,
			Provider:          req.Provider,
			ProviderAccountID: providerAccountID,
		})
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return client, nil
}

// mapStoreError surfaces unique-constraint races as Conflict so two
// concurrent registrations for one email resolve cleanly.
func mapStoreError(err error) error {
	if errors.Is(err, store.ErrDuplicateKey) {
		return Errorf(ErrConflict, "user already exists")
	}
	return err
}
