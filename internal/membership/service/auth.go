package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/metrics"
	"github.com/aussiebroadwan/membership/internal/membership/store"
	"github.com/aussiebroadwan/membership/pkg/cryptox"
	"github.com/aussiebroadwan/membership/pkg/idx"
	"github.com/aussiebroadwan/membership/pkg/jwtx"
	"github.com/aussiebroadwan/membership/pkg/slogx"
)

const (
	// DefaultResetTTL is how long a forgot-mail key stays valid.
	DefaultResetTTL = 2 * time.Hour

	// DefaultRedeemWindow is how long after verification a password_reset
	// OTP may be redeemed.
	DefaultRedeemWindow = 15 * time.Minute

	minPasswordLength = 8
)

// AuthService covers registration, login, sessions and password recovery.
type AuthService struct {
	Store   store.Store
	Tokens  *TokenService
	Mail    Notifier
	Metrics *metrics.Metrics

	// StrictMail couples mail delivery to the surrounding transaction.
	StrictMail    bool
	DefaultRoleID int64
	PhoneRegion   string
	ResetTTL      time.Duration
	RedeemWindow  time.Duration
	Now           func() time.Time
}

type RegisterInput struct {
	Email    string
	Password string
	Profile  domain.Profile
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult is a signed session plus the member it was issued for.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Member    domain.Member
}

// Session is the outcome of an is-login check.
type Session struct {
	Token     string
	Refreshed bool
	ExpiresAt time.Time
	Claims    jwtx.Claims
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return validationf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func validateEmail(email string) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return "", validationf("email is required")
	}
	return email, nil
}

// Register creates a pending user with a profile and the default role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.Member, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	email, err := validateEmail(in.Email)
	if err != nil {
		return domain.Member{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return domain.Member{}, err
	}
	profile, err := normalizeProfile(in.Profile, s.PhoneRegion)
	if err != nil {
		return domain.Member{}, err
	}

	// 2. Hash the password outside the transaction
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Member{}, err
	}

	roleID := s.DefaultRoleID
	if roleID == 0 {
		roleID = domain.RoleAdmin
	}

	// 3. User, profile and role fan-out land together or not at all
	now := clock(s.Now)
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		if err := tx.Profiles().ReplaceProfile(ctx, user.ID, profile, now); err != nil {
			return err
		}
		return grantRole(ctx, tx, user.ID, roleID, now)
	})
	if err != nil {
		log.Warn("registration failed", slog.Any("error", err))
		return domain.Member{}, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.Int64("role_id", roleID),
	)
	return loadMember(ctx, s.Store, user)
}

// Login checks credentials and issues a session token. Every attempt on a
// known account is written to the login audit.
// decoyHash is verified against when the e-mail is unknown so both failure
// paths pay for an argon2 derivation.
var decoyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("decoy-password")
	return h
})

func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	log := slogx.FromContext(ctx)
	email := domain.NormalizeEmail(in.Email)

	// 1. Look up the account
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(in.Password, decoyHash())
			log.Warn("login for unknown email")
			s.Metrics.Login(string(domain.LoginFailed))
			return LoginResult{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return LoginResult{}, err
	}
	ctx = slogx.WithUser(ctx, user.ID)
	log = slogx.FromContext(ctx)

	// 2. Verify the password
	if err := cryptox.VerifyPassword(in.Password, user.PasswordHash); err != nil {
		log.Warn("login with wrong password")
		s.audit(ctx, user.ID, domain.LoginFailed, in)
		return LoginResult{}, ErrInvalidCredentials
	}

	// 3. Only active accounts may sign in
	if user.Status != domain.StatusActive {
		log.Warn("login for inactive account", slog.String("status", user.Status.String()))
		s.audit(ctx, user.ID, domain.LoginFailed, in)
		return LoginResult{}, fmt.Errorf("%w: %s", ErrAccountInactive, user.Status)
	}

	// 4. Issue the token
	member, err := loadMember(ctx, s.Store, user)
	if err != nil {
		log.Error("failed to load member", slog.Any("error", err))
		return LoginResult{}, err
	}
	token, claims, err := s.Tokens.Issue(identityFor(member), 0)
	if err != nil {
		log.Error("failed to issue token", slog.Any("error", err))
		return LoginResult{}, err
	}

	s.audit(ctx, user.ID, domain.LoginSuccess, in)
	log.Info("user logged in")

	return LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time.UTC(), Member: member}, nil
}

// audit appends a login transaction. A failed write is logged, never
// surfaced to the caller.
func (s *AuthService) audit(ctx context.Context, userID string, outcome domain.LoginOutcome, in LoginInput) {
	s.Metrics.Login(string(outcome))

	err := s.Store.LoginTransactions().AppendLoginTransaction(ctx, domain.LoginTransaction{
		ID:        idx.New().String(),
		UserID:    userID,
		Outcome:   outcome,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		CreatedAt: clock(s.Now),
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to append login transaction", slog.Any("error", err))
	}
}

// activeUser re-checks that the token subject still exists and is active.
func (s *AuthService) activeUser(ctx context.Context, claims jwtx.Claims) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrTokenInvalid
		}
		return domain.User{}, err
	}
	if user.Status != domain.StatusActive {
		return domain.User{}, fmt.Errorf("%w: %s", ErrAccountInactive, user.Status)
	}
	return user, nil
}

// CheckActive reports whether the subject of already verified claims still
// exists and is active.
func (s *AuthService) CheckActive(ctx context.Context, claims jwtx.Claims) error {
	_, err := s.activeUser(ctx, claims)
	return err
}

// VerifyToken validates token and the account behind it.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if _, err := s.activeUser(ctx, claims); err != nil {
		return jwtx.Claims{}, err
	}
	return claims, nil
}

// IsLogin validates a session and slides it forward when close to expiry.
// A re-issued token is audited as a successful login.
func (s *AuthService) IsLogin(ctx context.Context, token string, ip, userAgent string) (Session, error) {
	claims, err := s.VerifyToken(ctx, token)
	if err != nil {
		return Session{}, err
	}

	fresh, freshClaims, refreshed, err := s.Tokens.refresh(token, claims)
	if err != nil {
		return Session{}, err
	}
	if refreshed {
		s.audit(ctx, claims.UserID, domain.LoginSuccess, LoginInput{IPAddress: ip, UserAgent: userAgent})
		slogx.FromContext(ctx).Info("session refreshed", slog.String("user_id", claims.UserID))
	}

	return Session{
		Token:     fresh,
		Refreshed: refreshed,
		ExpiresAt: freshClaims.ExpiresAt.Time.UTC(),
		Claims:    freshClaims,
	}, nil
}

// ResetPassword sets a new password once a password_reset OTP for email has
// been verified. Each verified code authorises one reset.
func (s *AuthService) ResetPassword(ctx context.Context, email, ref, newPassword string) error {
	log := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	window := s.RedeemWindow
	if window == 0 {
		window = DefaultRedeemWindow
	}

	now := clock(s.Now)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		otp, err := tx.OTPs().GetOTPByRef(ctx, ref)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOTPNotFound
			}
			return err
		}
		if otp.RecipientEmail != email || otp.Purpose != domain.PurposePasswordReset {
			return ErrOTPNotFound
		}
		if !otp.IsUsed() {
			return ErrOTPNotVerified
		}
		if otp.RedeemedAt != nil {
			return ErrOTPAlreadyUsed
		}
		if !now.Before(otp.UsedAt.Add(window)) {
			return ErrOTPExpired
		}

		user, err := tx.Users().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOTPNotFound
			}
			return err
		}

		if err := tx.OTPs().MarkOTPRedeemed(ctx, otp.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrOTPAlreadyUsed
			}
			return err
		}
		return tx.Users().UpdatePasswordHash(ctx, user.ID, hash, now)
	})
	if err != nil {
		log.Warn("password reset rejected", slog.Any("error", err))
		return err
	}

	log.Info("password reset via otp")
	return nil
}

// RequestPasswordReset mails a single-use reset link. The response is the
// same whether or not the address is registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	email, err := validateEmail(email)
	if err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	ttl := s.ResetTTL
	if ttl == 0 {
		ttl = DefaultResetTTL
	}

	key := uuid.NewString()
	now := clock(s.Now)
	reset := domain.PasswordReset{
		ID:             idx.New().String(),
		RecipientEmail: user.Email,
		KeyHash:        cryptox.FingerprintToken(key),
		ExpiresAt:      now.Add(ttl),
		CreatedAt:      now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.PasswordResets().ExpireActivePasswordResets(ctx, user.Email, now); err != nil {
			return err
		}
		if err := tx.PasswordResets().CreatePasswordReset(ctx, reset); err != nil {
			return err
		}
		return deliver(ctx, s.StrictMail, s.Metrics, "password_reset", func() error {
			return s.Mail.SendPasswordReset(ctx, user.Email, key, ttl)
		})
	})
	if err != nil {
		return err
	}

	log.Info("password reset issued", slog.String("user_id", user.ID), slog.String("reset_id", reset.ID))
	return nil
}

// lookupReset resolves a reset key and checks that it is still usable.
func lookupReset(ctx context.Context, st store.Store, key string, now time.Time) (domain.PasswordReset, error) {
	if _, err := uuid.Parse(key); err != nil {
		return domain.PasswordReset{}, ErrResetNotFound
	}

	reset, err := st.PasswordResets().GetPasswordResetByKeyHash(ctx, cryptox.FingerprintToken(key))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PasswordReset{}, ErrResetNotFound
		}
		return domain.PasswordReset{}, err
	}
	if reset.UsedAt != nil {
		return domain.PasswordReset{}, ErrResetAlreadyUsed
	}
	if reset.IsExpired(now) {
		return domain.PasswordReset{}, ErrResetExpired
	}
	return reset, nil
}

// VerifyPasswordReset returns the address a reset key was issued for.
func (s *AuthService) VerifyPasswordReset(ctx context.Context, key string) (string, error) {
	reset, err := lookupReset(ctx, s.Store, key, clock(s.Now))
	if err != nil {
		return "", err
	}
	return reset.RecipientEmail, nil
}

// CompletePasswordReset consumes a reset key and sets the new password.
func (s *AuthService) CompletePasswordReset(ctx context.Context, email, key, newPassword string) error {
	log := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	now := clock(s.Now)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		reset, err := lookupReset(ctx, tx, key, now)
		if err != nil {
			return err
		}
		if reset.RecipientEmail != email {
			return ErrResetNotFound
		}

		user, err := tx.Users().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrResetNotFound
			}
			return err
		}

		if err := tx.PasswordResets().MarkPasswordResetUsed(ctx, reset.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrResetAlreadyUsed
			}
			return err
		}
		return tx.Users().UpdatePasswordHash(ctx, user.ID, hash, now)
	})
	if err != nil {
		log.Warn("password reset rejected", slog.Any("error", err))
		return err
	}

	log.Info("password reset via forgot mail")
	return nil
}
