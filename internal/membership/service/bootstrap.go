package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/store"
	"github.com/aussiebroadwan/membership/pkg/cryptox"
	"github.com/aussiebroadwan/membership/pkg/idx"
	"github.com/aussiebroadwan/membership/pkg/slogx"
)

// BootstrapService creates the first captain on an empty system.
type BootstrapService struct {
	Store       store.Store
	Token       string // pre-configured bootstrap token; empty disables bootstrap
	PhoneRegion string
	Now         func() time.Time
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates an active captain holding every permission. It only
// succeeds while no user exists.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (string, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate provided token
	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return "", ErrBootstrapUnauthorized
	}

	// 2. Check if already bootstrapped
	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return "", err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return "", ErrBootstrapAlready
	}

	// 3. Validate and hash
	email, err := validateEmail(req.Email)
	if err != nil {
		return "", err
	}
	if err := validatePassword(req.Password); err != nil {
		return "", err
	}
	profile, err := normalizeProfile(req.Profile, s.PhoneRegion)
	if err != nil {
		return "", err
	}
	passHash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		l.Error("failed to hash captain password", slog.Any("error", err))
		return "", err
	}

	// 4. Create the captain in a transaction
	now := clock(s.Now)
	captain := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: passHash,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}

		if err := tx.Users().CreateUser(ctx, captain); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrBootstrapAlready
			}
			return err
		}
		if err := tx.Profiles().ReplaceProfile(ctx, captain.ID, profile, now); err != nil {
			return err
		}
		return grantRole(ctx, tx, captain.ID, domain.RoleCaptain, now)
	})
	if err != nil {
		l.Error("bootstrap failed", slog.Any("error", err))
		return "", err
	}

	l.Info("successfully bootstrapped system", slog.String("captain_user_id", captain.ID))
	return captain.ID, nil
}
