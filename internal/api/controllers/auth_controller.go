package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/fasthttp/router"
	"github.com/mosaicboards/mosaic/internal/api/authenticator"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/mosaicboards/mosaic/internal/services"
	"github.com/mosaicboards/mosaic/internal/services/user"
	"github.com/valyala/fasthttp"
	"golang.org/x/oauth2"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func RegisterAuthRoutes(r *router.Router, svc *services.Services, auth *authenticator.Authenticator) {
	r.GET("/api/board-server/auth/enabled", func(ctx *fasthttp.RequestCtx) {
		writeOK(ctx, requestContext(ctx), "success", map[string]any{
			"sso_enabled": auth.OIDCEnabled(),
		})
	})

	// Create an account
	r.POST("/api/board-server/auth/register", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req user.RegisterRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		created, err := svc.User.Register(stdCtx, &req)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to register", err)
			return
		}

		writeOK(ctx, stdCtx, "Account created successfully", toUserResponse(created))
	})

	// Login with email/password
	r.POST("/api/board-server/auth/login", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req LoginRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		if req.Email == "" || req.Password == "" {
			writeError(ctx, stdCtx, "Email and password are required", perrors.NewErrBadInput("Email and password are required", errors.New("missing credentials")))
			return
		}

		u, err := svc.User.Authenticate(stdCtx, req.Email, req.Password)
		if err != nil {
			writeError(ctx, stdCtx, "Invalid credentials", err)
			return
		}

		token, err := auth.GenerateToken(u.ID, u.Email, u.Name, string(u.Role))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", err)
			return
		}

		setAccessTokenCookie(ctx, token, time.Now().Add(24*time.Hour))

		writeOK(ctx, stdCtx, "success", LoginResponse{
			Token: token,
			User:  toUserResponse(u),
		})
	})

	// Get current user info
	r.GET("/api/board-server/auth/me", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		actor := actorFrom(ctx)
		if actor == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthenticated("Authentication required", errors.New("no actor resolved")))
			return
		}

		u, err := svc.User.GetByID(stdCtx, actor.UserID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get user", err)
			return
		}

		writeOK(ctx, stdCtx, "success", toUserResponse(u))
	})

	// Logout clears the access_token cookie
	r.POST("/api/board-server/auth/logout", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		setAccessTokenCookie(ctx, "", time.Now().Add(-1*time.Hour))

		writeOK(ctx, stdCtx, "success", map[string]any{
			"message": "Logged out successfully",
		})
	})

	r.GET("/api/board-server/auth/sso/login", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		if !auth.OIDCEnabled() {
			writeError(ctx, stdCtx, "SSO is not configured", perrors.NewErrBadInput("SSO is not configured", errors.New("no oidc issuer")))
			return
		}

		csrf := make([]byte, 16)
		if _, err := rand.Read(csrf); err != nil {
			writeError(ctx, stdCtx, "Failed to generate state", perrors.NewErrInternalServerError("Failed to generate state", err))
			return
		}

		state := authenticator.OAuthState{
			CSRF:      base64.RawURLEncoding.EncodeToString(csrf),
			Redirect:  "http://localhost:3000",
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		}

		encodedState, err := auth.GetSignedState(state)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create signed state", err)
			return
		}

		url := auth.AuthCodeURL(encodedState, oauth2.SetAuthURLParam("audience", auth.Audience()))
		ctx.Redirect(url, fasthttp.StatusTemporaryRedirect)
	})

	r.GET("/api/board-server/auth/sso/callback", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		encodedState := ctx.URI().QueryArgs().Peek("state")
		code := ctx.URI().QueryArgs().Peek("code")

		if encodedState == nil || code == nil {
			writeError(ctx, stdCtx, "missing parameters", perrors.NewErrBadInput("missing parameters", errors.New("missing parameters")))
			return
		}

		state, err := auth.VerifySignedState(string(encodedState))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to decode state", perrors.NewErrBadInput("Failed to decode state", err))
			return
		}

		token, err := auth.Exchange(stdCtx, string(code))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to exchange token", err)
			return
		}

		idToken, err := auth.VerifyIDToken(stdCtx, token)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to verify ID token", err)
			return
		}

		var profile struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := idToken.Claims(&profile); err != nil {
			writeError(ctx, stdCtx, "Failed to get claims", err)
			return
		}
		if profile.Email == "" {
			writeError(ctx, stdCtx, "Identity provider returned no email", perrors.NewErrBadInput("Identity provider returned no email", errors.New("empty email claim")))
			return
		}

		u, err := svc.User.EnsureSSOUser(stdCtx, profile.Email, profile.Name)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to resolve account", err)
			return
		}

		// Mint a local token so downstream auth is uniform for both
		// password and SSO logins.
		localToken, err := auth.GenerateToken(u.ID, u.Email, u.Name, string(u.Role))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", err)
			return
		}

		setAccessTokenCookie(ctx, localToken, time.Now().Add(24*time.Hour))
		ctx.Redirect(state.Redirect, fasthttp.StatusFound)
	})
}

func setAccessTokenCookie(ctx *fasthttp.RequestCtx, token string, expires time.Time) {
	var cookie fasthttp.Cookie
	cookie.SetKey("access_token")
	cookie.SetValue(token)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(false) // Set to true in production (HTTPS)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(expires)
	ctx.Response.Header.SetCookie(&cookie)
}
