package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/metrics"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/internal/membership/store"
	"github.com/aussiebroadwan/membership/pkg/httpx"
	"github.com/aussiebroadwan/membership/pkg/jwtx"
	"github.com/aussiebroadwan/membership/pkg/slogx"

	_ "github.com/aussiebroadwan/membership/api/membership" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// Guard enables bearer authentication and permission checks on
	// protected routes. With it off every route is open.
	Guard  bool
	Limits httpx.Limits

	Metrics     *metrics.Metrics
	SignerReady func() bool

	AuthService      *service.AuthService
	OTPService       *service.OTPService
	InviteService    *service.InviteService
	MemberService    *service.MemberService
	RolesService     *service.RolesService
	BootstrapService *service.BootstrapService
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		Guard:        true,
		Limits:       httpx.DefaultLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// Use appends middleware to the global chain. It runs after the request
// logger.
func (r *Router) Use(mw ...httpx.Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOTP()
	r.registerInvites()
	r.registerMembers()
	r.registerRoles()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Membership Service API
//	@version		0.1.0
//	@description	Member registration, login sessions, one-time codes, password recovery and role-based invitations.
//	@description
//	@description				Session tokens are HS256 JWTs carrying the member's role and permission names.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/membership
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured authenticates the caller, checks perms when given and limits by
// user.
func (r *Router) secured(h http.Handler, perms ...string) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier, r.Guard), r.requireActive}
	if len(perms) > 0 {
		mws = append(mws, httpx.RequireAnyPermission(r.Guard, perms...))
	}
	mws = append(mws, httpx.RateLimitByUser(r.Limits.Moderate))
	return httpx.Chain(h, mws...)
}

// requireActive rejects callers whose account was suspended, deleted or
// removed after their token was issued.
func (r *Router) requireActive(next http.Handler) http.Handler {
	if !r.Guard {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		claims, ok := httpx.ClaimsFrom(req.Context())
		if !ok {
			next.ServeHTTP(w, req)
			return
		}

		err := r.AuthService.CheckActive(req.Context(), claims)
		switch {
		case err == nil:
			next.ServeHTTP(w, req)
		case errors.Is(err, service.ErrAccountInactive):
			slogx.FromContext(req.Context()).Warn("inactive account on protected route",
				slog.String("user_id", claims.UserID))
			httpx.WriteFailure(w, http.StatusForbidden, err.Error())
		default:
			writeError(w, req, err)
		}
	})
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, MemberService: r.MemberService}

	// Credential entry points - strict rate limit by IP + e-mail
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/auth/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)

	// Session checks - polled by front ends, public limit
	r.Mux.Handle("GET /v1/auth/is-login",
		httpx.Chain(http.HandlerFunc(h.HandleIsLogin),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
	r.Mux.Handle("GET /v1/auth/verify-token",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyToken),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)

	// Forgot-password mail
	r.Mux.Handle("POST /v1/auth/send/forgot-mail",
		httpx.Chain(http.HandlerFunc(h.HandleSendForgotMail),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/send/forgot-mail/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyForgotMail),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/auth/send/forgot-mail/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgotMailReset),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)

	r.Mux.Handle("GET /v1/auth/transaction/login",
		r.secured(http.HandlerFunc(h.HandleLoginTransactions), domain.PermNameViewUsers))
}

func (r *Router) registerOTP() {
	h := &OTPHandler{OTPService: r.OTPService}

	r.Mux.Handle("POST /v1/otp",
		httpx.Chain(http.HandlerFunc(h.HandleRequest),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /v1/otp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIPAndJSONField(r.Limits.Strict, "email"),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InviteHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /v1/member/send/invite",
		r.secured(http.HandlerFunc(h.HandleSend), domain.PermNameInviteMembers))
	r.Mux.Handle("GET /v1/member/invite",
		r.secured(http.HandlerFunc(h.HandleList), domain.PermNameInviteMembers))
	r.Mux.Handle("PUT /v1/member/invite/reject/{id}",
		r.secured(http.HandlerFunc(h.HandleReject), domain.PermNameInviteMembers))

	// Invitation links are opened by people without an account yet
	r.Mux.Handle("POST /v1/member/invite/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/member/invite/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerMembers() {
	h := &MemberHandler{MemberService: r.MemberService}

	r.Mux.Handle("PUT /v1/member/{id}/status",
		r.secured(http.HandlerFunc(h.HandleStatus), domain.PermNameEditUsers))
	r.Mux.Handle("PUT /v1/member/{id}/role",
		r.secured(http.HandlerFunc(h.HandleRole), domain.PermNameAssignRoles))
	r.Mux.Handle("DELETE /v1/member/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), domain.PermNameDeleteUsers))

	r.Mux.Handle("GET /v1/user/me", r.secured(http.HandlerFunc(h.HandleMe)))
	r.Mux.Handle("PUT /v1/my-member/avatar", r.secured(http.HandlerFunc(h.HandleAvatar)))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	r.Mux.Handle("GET /v1/roles", r.secured(http.HandlerFunc(h.HandleRoles)))
	r.Mux.Handle("GET /v1/permissions", r.secured(http.HandlerFunc(h.HandlePermissions)))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(&BootstrapHandler{BootstrapService: r.BootstrapService},
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - public limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.SignerReady),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
	r.Mux.Handle("GET /metrics", r.Metrics.Handler())
}
