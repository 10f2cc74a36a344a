package remember

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"station/cmd/internal/sweep"
	"station/cmd/security/password"
	"station/cmd/security/token"
)

// Observer receives vault outcomes. metrics.Metrics implements it.
type Observer interface {
	TokenIssued()
	TokenValidated(outcome string)
	TokensRevoked(n int64)
}

type nopObserver struct{}

func (nopObserver) TokenIssued()          {}
func (nopObserver) TokenValidated(string) {}
func (nopObserver) TokensRevoked(int64)   {}

// Validation outcomes passed to Observer.TokenValidated; metrics use them as
// the outcome label.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Issued is a freshly minted token. Secret is the only copy of the plaintext.
type Issued struct {
	LookupID  string
	Secret    string
	TTL       time.Duration
	ExpiresAt time.Time
}

// CookieValue returns the wire form of the token.
func (i Issued) CookieValue() string { return FormatCookieValue(i.LookupID, i.Secret) }

// Vault issues, validates and revokes remember tokens.
type Vault struct {
	cfg    Config
	store  Store
	hasher password.Hasher
	log    *slog.Logger
	obs    Observer
	now    func() time.Time

	sweepObs     sweep.Observer
	sweepEnabled bool
	sweeper      *sweep.Sweeper

	dummyHash string
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(log *slog.Logger) Option {
	return func(v *Vault) {
		if log != nil {
			v.log = log
		}
	}
}

// WithObserver registers an outcome observer.
func WithObserver(obs Observer) Option {
	return func(v *Vault) {
		if obs != nil {
			v.obs = obs
		}
	}
}

// WithSweepObserver registers an observer for the vault's sweeper.
func WithSweepObserver(obs sweep.Observer) Option {
	return func(v *Vault) {
		if obs != nil {
			v.sweepObs = obs
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) {
		if now != nil {
			v.now = now
		}
	}
}

// WithoutSweeper skips starting the background sweeper.
// SweepExpired remains available for callers that schedule it themselves.
func WithoutSweeper() Option {
	return func(v *Vault) { v.sweepEnabled = false }
}

// NewVault constructs a Vault and starts its sweeper.
func NewVault(store Store, hasher password.Hasher, cfg Config, opts ...Option) (*Vault, error) {
	if store == nil || hasher == nil {
		return nil, fmt.Errorf("remember: nil store or hasher")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := &Vault{
		cfg:          cfg,
		store:        store,
		hasher:       hasher,
		log:          slog.Default(),
		obs:          nopObserver{},
		now:          time.Now,
		sweepEnabled: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	// Hash of a throwaway secret, verified against on every miss so that
	// unknown, expired and wrong tokens take the same time.
	dummy, err := token.New(cfg.SecretBytes)
	if err != nil {
		return nil, err
	}
	if v.dummyHash, err = hasher.Hash(dummy); err != nil {
		return nil, fmt.Errorf("remember: dummy hash: %w", err)
	}

	if v.sweepEnabled {
		v.sweeper = sweep.New("remember_tokens", v.SweepExpired,
			sweep.WithInterval(cfg.SweepInterval),
			sweep.WithMaxFailures(cfg.SweepMaxFailures),
			sweep.WithLogger(v.log),
			sweep.WithObserver(v.sweepObs),
		)
		v.sweeper.Start(context.Background())
	}

	return v, nil
}

// Config returns the vault configuration.
func (v *Vault) Config() Config { return v.cfg }

// Close stops the sweeper. It does not close the store.
func (v *Vault) Close() {
	if v.sweeper != nil {
		v.sweeper.Stop()
	}
}

// Issue mints a token for userID and persists its hashed secret.
func (v *Vault) Issue(ctx context.Context, userID string) (Issued, error) {
	if strings.TrimSpace(userID) == "" {
		return Issued{}, ErrInvalidInput
	}

	secret, err := token.New(v.cfg.SecretBytes)
	if err != nil {
		return Issued{}, err
	}
	hash, err := v.hasher.Hash(secret)
	if err != nil {
		return Issued{}, fmt.Errorf("remember: hash secret: %w", err)
	}

	expiresAt := time.Unix(v.now().Add(v.cfg.TTL).Unix(), 0).UTC()

	for attempt := 0; attempt <= v.cfg.IssueRetries; attempt++ {
		lookupID, err := token.New(v.cfg.LookupBytes)
		if err != nil {
			return Issued{}, err
		}

		err = v.store.Insert(ctx, Row{
			LookupID:   lookupID,
			SecretHash: hash,
			UserID:     userID,
			ExpiresAt:  expiresAt,
		})
		if errors.Is(err, ErrDuplicateLookup) {
			v.log.Warn("remember.issue.lookup_collision", "attempt", attempt+1)
			continue
		}
		if err != nil {
			return Issued{}, persistErr("issue", err)
		}

		v.obs.TokenIssued()
		return Issued{
			LookupID:  lookupID,
			Secret:    secret,
			TTL:       v.cfg.TTL,
			ExpiresAt: expiresAt,
		}, nil
	}

	return Issued{}, persistErr("issue", ErrDuplicateLookup)
}

// Validate resolves a token to its user id.
//
// ok is false for unknown, expired and mismatched tokens alike. err is only
// set for persistence failures. Validate never writes.
func (v *Vault) Validate(ctx context.Context, lookupID, secret string) (userID string, ok bool, err error) {
	if lookupID == "" || secret == "" {
		v.burnVerify(secret)
		v.obs.TokenValidated(OutcomeInvalid)
		return "", false, nil
	}

	row, err := v.store.GetByLookup(ctx, lookupID)
	if errors.Is(err, ErrNotFound) {
		v.burnVerify(secret)
		v.obs.TokenValidated(OutcomeInvalid)
		return "", false, nil
	}
	if err != nil {
		v.obs.TokenValidated(OutcomeError)
		return "", false, persistErr("validate", err)
	}

	if row.ExpiresAt.Unix() <= v.now().Unix() {
		v.burnVerify(secret)
		v.obs.TokenValidated(OutcomeInvalid)
		return "", false, nil
	}

	match, err := v.hasher.Verify(row.SecretHash, secret)
	if err != nil {
		// Unreadable hash, e.g. a legacy row. It can never validate.
		v.log.Warn("remember.validate.bad_hash", "row_id", row.ID, "err", err)
		v.obs.TokenValidated(OutcomeInvalid)
		return "", false, nil
	}
	if !match {
		v.obs.TokenValidated(OutcomeInvalid)
		return "", false, nil
	}

	v.obs.TokenValidated(OutcomeValid)
	return row.UserID, true, nil
}

// Revoke deletes the token with lookupID. Revoking an unknown token is not an error.
func (v *Vault) Revoke(ctx context.Context, lookupID string) error {
	if lookupID == "" {
		return nil
	}
	n, err := v.store.DeleteByLookup(ctx, lookupID)
	if err != nil {
		return persistErr("revoke", err)
	}
	v.obs.TokensRevoked(n)
	return nil
}

// RevokeAll deletes every token of userID and returns how many were removed.
func (v *Vault) RevokeAll(ctx context.Context, userID string) (int64, error) {
	n, err := v.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, persistErr("revoke_all", err)
	}
	v.obs.TokensRevoked(n)
	return n, nil
}

// SweepExpired deletes tokens whose deadline has passed.
func (v *Vault) SweepExpired(ctx context.Context) (int64, error) {
	n, err := v.store.DeleteExpired(ctx, v.now())
	if err != nil {
		return 0, persistErr("sweep", err)
	}
	return n, nil
}

func (v *Vault) burnVerify(secret string) {
	_, _ = v.hasher.Verify(v.dummyHash, secret)
}
