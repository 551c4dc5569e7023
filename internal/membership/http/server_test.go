package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	membershiphttp "github.com/aussiebroadwan/membership/internal/membership/http"
	"github.com/aussiebroadwan/membership/internal/membership/metrics"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/internal/membership/store/drivers/sqlite"
	"github.com/aussiebroadwan/membership/pkg/cryptox"
	"github.com/aussiebroadwan/membership/pkg/httpx"
	"github.com/aussiebroadwan/membership/pkg/jwtx"
	"github.com/aussiebroadwan/membership/pkg/membersdk"
	"github.com/aussiebroadwan/membership/pkg/slogx"
)

const bootstrapToken = "bootstrap-secret"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "membership-http")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// outbox captures what the services would have mailed.
type outbox struct {
	mu      sync.Mutex
	otps    map[string]string // ref -> code
	invites map[string]string // email -> ref
	resets  map[string]string // email -> key
}

func newOutbox() *outbox {
	return &outbox{otps: map[string]string{}, invites: map[string]string{}, resets: map[string]string{}}
}

func (o *outbox) SendOTP(_ context.Context, _, code, ref string, _ time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.otps[ref] = code
	return nil
}

func (o *outbox) SendInvite(_ context.Context, to, ref, _ string, _ time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.invites[to] = ref
	return nil
}

func (o *outbox) SendPasswordReset(_ context.Context, to, key string, _ time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resets[to] = key
	return nil
}

func (o *outbox) code(ref string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.otps[ref]
}

func (o *outbox) invite(email string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.invites[email]
}

func (o *outbox) reset(email string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resets[email]
}

type harness struct {
	server *httptest.Server
	client *membersdk.Client
	mail   *outbox
}

func newHarness(t *testing.T, guard bool) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	box := newOutbox()
	signer := jwtx.NewHS256("http-test-secret", "membership")
	tokens := &service.TokenService{Signer: signer}

	r := membershiphttp.NewRouter(signer, "test", st, slogx.Discard())
	r.Guard = guard
	r.Limits = httpx.Limits{}
	r.Metrics = metrics.New()
	r.SignerReady = signer.Ready
	r.AuthService = &service.AuthService{Store: st, Tokens: tokens, Mail: box, Metrics: r.Metrics, StrictMail: true}
	r.OTPService = &service.OTPService{Store: st, Mail: box, Metrics: r.Metrics, StrictMail: true}
	r.InviteService = &service.InviteService{Store: st, Mail: box, Metrics: r.Metrics, StrictMail: true}
	r.MemberService = &service.MemberService{Store: st}
	r.RolesService = &service.RolesService{Store: st}
	r.BootstrapService = &service.BootstrapService{Store: st, Token: bootstrapToken}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &harness{server: srv, client: membersdk.NewClient(srv.URL), mail: box}
}

func profile(first string) membersdk.ProfileInput {
	return membersdk.ProfileInput{
		Translations: []membersdk.Translation{{LanguageCode: "en", FirstName: first, LastName: "Member"}},
	}
}

// captain bootstraps the system and returns a client signed in as captain.
func (h *harness) captain(t *testing.T) *membersdk.Client {
	t.Helper()
	ctx := context.Background()

	_, err := h.client.Bootstrap(ctx, bootstrapToken, membersdk.BootstrapRequest{
		Email:    "captain@example.com",
		Password: "captain-pass",
		Profile:  profile("Captain"),
	})
	require.NoError(t, err)

	login, err := h.client.Login(ctx, membersdk.LoginRequest{Email: "captain@example.com", Password: "captain-pass"})
	require.NoError(t, err)
	return h.client.WithToken(login.Token)
}

func TestRegisterActivatePromoteLogin(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	captain := h.captain(t)

	user, err := h.client.Register(ctx, membersdk.RegisterRequest{
		Email:    "Olive@Example.com",
		Password: "olive-pass",
		Profile:  profile("Olive"),
	})
	require.NoError(t, err)
	require.Equal(t, "olive@example.com", user.Email)
	require.Equal(t, "pending", user.Status)

	_, err = h.client.Login(ctx, membersdk.LoginRequest{Email: "olive@example.com", Password: "olive-pass"})
	require.True(t, membersdk.IsUnauthorized(err), err)

	_, err = h.client.Register(ctx, membersdk.RegisterRequest{
		Email:    "olive@example.com",
		Password: "other-pass",
		Profile:  profile("Olive"),
	})
	require.True(t, membersdk.IsBadRequest(err), err)

	user, err = captain.UpdateStatus(ctx, user.ID, 1)
	require.NoError(t, err)
	require.Equal(t, "active", user.Status)

	user, err = captain.UpdateRole(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, user.Roles, 1)
	require.Equal(t, "owner", user.Roles[0].Name)
	require.Len(t, user.Permissions, 19)

	login, err := h.client.Login(ctx, membersdk.LoginRequest{Email: "olive@example.com", Password: "olive-pass"})
	require.NoError(t, err)
	require.Equal(t, user.ID, login.User.ID)
	require.Len(t, login.Permissions, 19)
	require.NotContains(t, login.Permissions, "manage_system")

	olive := h.client.WithToken(login.Token)
	claims, err := olive.VerifyToken(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), claims.Role)
	require.Equal(t, "Olive Member", claims.Name)

	session, err := olive.IsLogin(ctx)
	require.NoError(t, err)
	require.False(t, session.Refreshed)
	require.Equal(t, login.Token, session.Token)

	me, err := olive.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "olive@example.com", me.Email)
	require.Equal(t, "en", me.Translations[0].LanguageCode)

	audit, err := captain.LoginTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, audit, 2)

	// Suspension ends the session.
	_, err = captain.UpdateStatus(ctx, user.ID, 3)
	require.NoError(t, err)
	_, err = olive.VerifyToken(ctx)
	require.True(t, membersdk.IsUnauthorized(err), err)
	_, err = captain.UpdateStatus(ctx, user.ID, 2)
	require.True(t, membersdk.IsBadRequest(err), err)

	// A suspended owner loses admin routes while the token is still valid.
	_, err = olive.SendInvite(ctx, membersdk.InviteRequest{Email: "ghost@example.com", RoleID: 3})
	require.True(t, membersdk.IsForbidden(err), err)
	_, err = olive.Me(ctx)
	require.True(t, membersdk.IsForbidden(err), err)
	invites, err := captain.ListInvites(ctx, "ghost@example.com")
	require.NoError(t, err)
	require.Empty(t, invites)

	// Once removed, the token no longer names anyone.
	require.NoError(t, captain.DeleteMember(ctx, user.ID))
	_, err = olive.Me(ctx)
	require.True(t, membersdk.IsUnauthorized(err), err)
}

func TestInvitationFlow(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	captain := h.captain(t)

	ticket, err := captain.SendInvite(ctx, membersdk.InviteRequest{Email: "Ada@Example.com", RoleID: 3})
	require.NoError(t, err)
	ref := h.mail.invite("ada@example.com")
	require.Equal(t, ticket.Ref, ref)

	list, err := captain.ListInvites(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "invite_pending", list[0].Status)

	accept := membersdk.InviteAcceptRequest{
		Ref:      ref,
		Email:    "ada@example.com",
		Password: "ada-password",
		Profile:  profile("Ada"),
	}
	_, err = h.client.AcceptInvite(ctx, accept)
	require.True(t, membersdk.IsBadRequest(err), err)

	verified, err := h.client.VerifyInvite(ctx, membersdk.InviteVerifyRequest{Ref: ref})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", verified.Email)
	require.Equal(t, int64(3), verified.RoleID)

	accepted, err := h.client.AcceptInvite(ctx, accept)
	require.NoError(t, err)
	require.NotEmpty(t, accepted.UserID)

	_, err = h.client.AcceptInvite(ctx, accept)
	require.True(t, membersdk.IsBadRequest(err), err)
	require.True(t, membersdk.IsBadRequest(captain.RejectInvite(ctx, ticket.ID)))

	login, err := h.client.Login(ctx, membersdk.LoginRequest{Email: "ada@example.com", Password: "ada-password"})
	require.NoError(t, err)
	require.Len(t, login.Permissions, 16)
	ada := h.client.WithToken(login.Token)

	// Admins can invite but not delete.
	require.True(t, membersdk.IsForbidden(ada.DeleteMember(ctx, accepted.UserID)))
	other, err := ada.SendInvite(ctx, membersdk.InviteRequest{Email: "bob@example.com", RoleID: 3})
	require.NoError(t, err)
	require.NoError(t, ada.RejectInvite(ctx, h.mail.invite("bob@example.com")))

	_, err = h.client.VerifyInvite(ctx, membersdk.InviteVerifyRequest{Ref: other.Ref})
	require.True(t, membersdk.IsBadRequest(err), err)
	_, err = h.client.VerifyInvite(ctx, membersdk.InviteVerifyRequest{Ref: "INV-unknown"})
	require.True(t, membersdk.IsNotFound(err), err)

	_, err = captain.SendInvite(ctx, membersdk.InviteRequest{Email: "ada@example.com", RoleID: 3})
	require.True(t, membersdk.IsBadRequest(err), err)
	_, err = captain.SendInvite(ctx, membersdk.InviteRequest{Email: "new@example.com", RoleID: 42})
	require.True(t, membersdk.IsBadRequest(err), err)

	require.NoError(t, captain.DeleteMember(ctx, accepted.UserID))
	require.True(t, membersdk.IsNotFound(captain.DeleteMember(ctx, accepted.UserID)))
}

func TestPasswordRecovery(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	h.captain(t)

	// OTP route
	otp, err := h.client.RequestOTP(ctx, membersdk.OTPRequest{Email: "captain@example.com", Purpose: membersdk.PurposePasswordReset})
	require.NoError(t, err)

	reset := membersdk.ResetPasswordRequest{Email: "captain@example.com", Ref: otp.Ref, NewPassword: "second-pass"}
	require.True(t, membersdk.IsBadRequest(h.client.ResetPassword(ctx, reset)))

	err = h.client.VerifyOTP(ctx, membersdk.OTPVerifyRequest{
		Email:   "captain@example.com",
		Purpose: membersdk.PurposePasswordReset,
		Ref:     otp.Ref,
		Code:    h.mail.code(otp.Ref),
	})
	require.NoError(t, err)
	require.NoError(t, h.client.ResetPassword(ctx, reset))
	require.True(t, membersdk.IsBadRequest(h.client.ResetPassword(ctx, reset)))

	_, err = h.client.Login(ctx, membersdk.LoginRequest{Email: "captain@example.com", Password: "second-pass"})
	require.NoError(t, err)

	// Forgot-mail route
	require.NoError(t, h.client.SendForgotMail(ctx, membersdk.ForgotMailRequest{Email: "captain@example.com"}))
	require.NoError(t, h.client.SendForgotMail(ctx, membersdk.ForgotMailRequest{Email: "ghost@example.com"}))
	key := h.mail.reset("captain@example.com")
	require.Empty(t, h.mail.reset("ghost@example.com"))

	verified, err := h.client.VerifyForgotMail(ctx, membersdk.ForgotMailVerifyRequest{Key: key})
	require.NoError(t, err)
	require.Equal(t, "captain@example.com", verified.Email)

	require.NoError(t, h.client.ForgotMailResetPassword(ctx, membersdk.ForgotMailResetRequest{
		Email: "captain@example.com", Key: key, NewPassword: "third-pass",
	}))
	_, err = h.client.VerifyForgotMail(ctx, membersdk.ForgotMailVerifyRequest{Key: key})
	require.True(t, membersdk.IsBadRequest(err), err)

	_, err = h.client.Login(ctx, membersdk.LoginRequest{Email: "captain@example.com", Password: "third-pass"})
	require.NoError(t, err)
}

func TestOTPForUnknownEmailLooksTheSame(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	otp, err := h.client.RequestOTP(ctx, membersdk.OTPRequest{Email: "ghost@example.com", Purpose: membersdk.PurposeVerifyEmail})
	require.NoError(t, err)
	require.NotEmpty(t, otp.Ref)
	require.Empty(t, h.mail.code(otp.Ref))

	err = h.client.VerifyOTP(ctx, membersdk.OTPVerifyRequest{
		Email: "ghost@example.com", Purpose: membersdk.PurposeVerifyEmail, Ref: otp.Ref, Code: "123456",
	})
	require.True(t, membersdk.IsNotFound(err), err)
}

func TestGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("enforced", func(t *testing.T) {
		h := newHarness(t, true)
		_, err := h.client.Me(ctx)
		require.True(t, membersdk.IsUnauthorized(err), err)
		_, err = h.client.Roles(ctx)
		require.True(t, membersdk.IsUnauthorized(err), err)
		_, err = h.client.WithToken("garbage").Permissions(ctx)
		require.True(t, membersdk.IsUnauthorized(err), err)
	})

	t.Run("disabled", func(t *testing.T) {
		h := newHarness(t, false)
		roles, err := h.client.Roles(ctx)
		require.NoError(t, err)
		require.Len(t, roles, 3)

		perms, err := h.client.Permissions(ctx)
		require.NoError(t, err)
		require.Len(t, perms, 20)

		// Routes about the caller still need to know who the caller is.
		_, err = h.client.Me(ctx)
		require.True(t, membersdk.IsUnauthorized(err), err)
	})
}

func TestRequestValidation(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	_, err := h.client.Register(ctx, membersdk.RegisterRequest{Email: "not-an-email", Password: "password-1"})
	require.True(t, membersdk.IsBadRequest(err), err)

	_, err = h.client.RequestOTP(ctx, membersdk.OTPRequest{Email: "a@example.com", Purpose: "other"})
	require.True(t, membersdk.IsBadRequest(err), err)

	resp, err := http.Post(h.server.URL+"/v1/auth/login", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err = h.client.Bootstrap(ctx, "wrong-token", membersdk.BootstrapRequest{
		Email: "x@example.com", Password: "password-1", Profile: profile("X"),
	})
	require.True(t, membersdk.IsUnauthorized(err), err)
}

func TestSystemRoutes(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	require.NoError(t, h.client.Ready(ctx))

	_, err := h.client.Login(ctx, membersdk.LoginRequest{Email: "nobody@example.com", Password: "password-1"})
	require.True(t, membersdk.IsUnauthorized(err), err)

	for path, want := range map[string]string{
		"/livez":   `"status":"ok"`,
		"/metrics": `membership_logins_total{outcome="failed"} 1`,
	} {
		resp, err := http.Get(h.server.URL + path)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		require.Contains(t, string(body), want, path)
	}
}
