package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/pkg/membersdk"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Env:                   "test",
		LogLevel:              "error",
		LogFormat:             "json",
		Port:                  8080,
		DatabaseFile:          filepath.Join(dir, "membership.db"),
		PepperFile:            filepath.Join(dir, "pepper"),
		JWTSecret:             "app-test-secret",
		JWTIssuer:             "membership",
		TokenTTL:              168 * time.Hour,
		TokenRefreshThreshold: 48 * time.Hour,
		OTPTTL:                5 * time.Minute,
		OTPMaxAttempts:        5,
		InviteTTL:             168 * time.Hour,
		ResetTTL:              2 * time.Hour,
		PurgeRetention:        24 * time.Hour,
		APIGuard:              true,
		DefaultRoleID:         domain.RoleAdmin,
		PhoneRegion:           "TH",
		BootstrapToken:        "app-bootstrap",
		FrontURL:              "http://localhost:3000",
		FrontResetPath:        "/reset-password",
		FrontInvitePath:       "/invite",
		ShutdownGracePeriod:   time.Second,
	}
}

func TestApplicationServes(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	client := membersdk.NewClient(srv.URL)
	require.NoError(t, client.Ready(ctx))

	_, err = client.Bootstrap(ctx, cfg.BootstrapToken, membersdk.BootstrapRequest{
		Email:    "captain@example.com",
		Password: "captain-pass",
		Profile: membersdk.ProfileInput{
			Translations: []membersdk.Translation{{LanguageCode: "en", FirstName: "Cap"}},
		},
	})
	require.NoError(t, err)

	login, err := client.Login(ctx, membersdk.LoginRequest{Email: "captain@example.com", Password: "captain-pass"})
	require.NoError(t, err)
	require.Len(t, login.Permissions, 20)

	// Mail is disabled, so an invitation still goes through.
	_, err = client.WithToken(login.Token).SendInvite(ctx, membersdk.InviteRequest{Email: "new@example.com", RoleID: domain.RoleOwner})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCommands(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	status, err := Migrate(cfg, 0)
	require.NoError(t, err)
	require.False(t, status.Dirty)
	require.NotZero(t, status.Version)

	data := domain.BootstrapData{
		Email:    "captain@example.com",
		Password: "captain-pass",
		Profile:  domain.Profile{Translations: []domain.Translation{{LanguageCode: "en", FirstName: "Cap"}}},
	}
	id, err := Bootstrap(ctx, cfg, data)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = Bootstrap(ctx, cfg, data)
	require.ErrorIs(t, err, service.ErrConflict)

	report, err := Purge(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, service.PurgeReport{}, report)
}
