package membersdk

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// OTP purposes accepted by /v1/otp.
const (
	PurposeVerifyEmail   = "verify_email"
	PurposePasswordReset = "password_reset"
)

// Response is the envelope every endpoint returns.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

var (
	emailRules    = []validation.Rule{validation.Required, validation.Length(3, 254), is.Email}
	passwordRules = []validation.Rule{validation.Required, validation.Length(8, 128)}
)

// ============================================================================
// Profile
// ============================================================================

// Translation is a localised name block of a member profile.
type Translation struct {
	LanguageCode string `json:"language_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Nickname     string `json:"nickname,omitempty"`
}

func (t Translation) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.LanguageCode, validation.Required, validation.Length(2, 8)),
		validation.Field(&t.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&t.LastName, validation.Length(0, 100)),
		validation.Field(&t.Nickname, validation.Length(0, 100)),
	)
}

// ProfileInput is the profile supplied on registration or invite acceptance.
type ProfileInput struct {
	Phone        string        `json:"phone,omitempty"`
	Translations []Translation `json:"translations"`
}

func (p ProfileInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Phone, validation.Length(0, 32)),
		validation.Field(&p.Translations),
	)
}

// Avatar references an image hosted elsewhere.
type Avatar struct {
	ID      string `json:"id"`
	BaseURL string `json:"base_url"`
	LazyURL string `json:"lazy_url,omitempty"`
}

func (a Avatar) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required, validation.Length(1, 128)),
		validation.Field(&a.BaseURL, validation.Required, is.URL),
		validation.Field(&a.LazyURL, is.URL),
	)
}

// ============================================================================
// Views
// ============================================================================

type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// User is the public shape of a member.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	StatusID     int64         `json:"status_id"`
	Status       string        `json:"status"`
	Avatar       *Avatar       `json:"avatar,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	Translations []Translation `json:"translations"`
	Roles        []Role        `json:"roles"`
	Permissions  []string      `json:"permissions"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type LoginTransaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Outcome   string    `json:"outcome"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

type Invitation struct {
	ID        string    `json:"id"`
	InviterID string    `json:"inviter_id,omitempty"`
	Email     string    `json:"email"`
	RoleID    int64     `json:"role_id"`
	StatusID  int64     `json:"status_id"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================================================================
// Auth
// ============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Password, validation.Required),
	)
}

type LoginResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
	Roles       []Role    `json:"roles"`
	Permissions []string  `json:"permissions"`
}

type RegisterRequest struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Profile  ProfileInput `json:"profile"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Password, passwordRules...),
		validation.Field(&r.Profile),
	)
}

// ResetPasswordRequest sets a new password after a password_reset OTP was
// verified through /v1/otp/verify.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Ref         string `json:"ref"`
	NewPassword string `json:"new_password"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Ref, validation.Required),
		validation.Field(&r.NewPassword, passwordRules...),
	)
}

type SessionResponse struct {
	Token     string    `json:"token"`
	Refreshed bool      `json:"refreshed"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TokenClaims struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	Role        int64     `json:"role,omitempty"`
	Roles       []int64   `json:"roles"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ForgotMailRequest struct {
	Email string `json:"email"`
}

func (r ForgotMailRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Email, emailRules...))
}

type ForgotMailVerifyRequest struct {
	Key string `json:"key"`
}

func (r ForgotMailVerifyRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Key, validation.Required, is.UUID))
}

type ForgotMailVerifyResponse struct {
	Email string `json:"email"`
}

type ForgotMailResetRequest struct {
	Email       string `json:"email"`
	Key         string `json:"key"`
	NewPassword string `json:"new_password"`
}

func (r ForgotMailResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Key, validation.Required, is.UUID),
		validation.Field(&r.NewPassword, passwordRules...),
	)
}

// ============================================================================
// OTP
// ============================================================================

type OTPRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

func (r OTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Purpose, validation.Required, validation.In(PurposeVerifyEmail, PurposePasswordReset)),
	)
}

type OTPResponse struct {
	Ref       string    `json:"ref"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OTPVerifyRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	Ref     string `json:"ref"`
	Code    string `json:"code"`
}

func (r OTPVerifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Purpose, validation.Required, validation.In(PurposeVerifyEmail, PurposePasswordReset)),
		validation.Field(&r.Ref, validation.Required),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

// ============================================================================
// Invitations
// ============================================================================

type InviteRequest struct {
	Email  string `json:"email"`
	RoleID int64  `json:"role_id"`
}

func (r InviteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.RoleID, validation.Required, validation.Min(1)),
	)
}

type InviteResponse struct {
	ID        string    `json:"id"`
	Ref       string    `json:"ref"`
	ExpiresAt time.Time `json:"expires_at"`
}

type InviteVerifyRequest struct {
	Ref string `json:"ref"`
}

func (r InviteVerifyRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Ref, validation.Required))
}

type InviteVerifyResponse struct {
	Email     string    `json:"email"`
	RoleID    int64     `json:"role_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type InviteAcceptRequest struct {
	Ref      string       `json:"ref"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Profile  ProfileInput `json:"profile"`
}

func (r InviteAcceptRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Ref, validation.Required),
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Password, passwordRules...),
		validation.Field(&r.Profile),
	)
}

type InviteAcceptResponse struct {
	UserID string `json:"user_id"`
}

// ============================================================================
// Member administration
// ============================================================================

type StatusUpdateRequest struct {
	StatusID int64 `json:"status_id"`
}

func (r StatusUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.StatusID, validation.Required, validation.Min(1)))
}

type RoleUpdateRequest struct {
	RoleID int64 `json:"role_id"`
}

func (r RoleUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.RoleID, validation.Required, validation.Min(1)))
}

// ============================================================================
// Bootstrap
// ============================================================================

type BootstrapRequest struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Profile  ProfileInput `json:"profile"`
}

func (r BootstrapRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Password, passwordRules...),
		validation.Field(&r.Profile),
	)
}

type BootstrapResponse struct {
	UserID string `json:"user_id"`
}
