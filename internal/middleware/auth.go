package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spendlog/spendlog/internal/auth"
	"github.com/spendlog/spendlog/internal/model"
	"github.com/spendlog/spendlog/internal/repository"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string, want auth.TokenType) (*auth.Claims, error)
}

// PrincipalCache caches resolved principals by user ID.
// GetPrincipal returns nil, nil on a miss.
type PrincipalCache interface {
	GetPrincipal(ctx context.Context, userID string) (*model.Principal, error)
	SetPrincipal(ctx context.Context, p *model.Principal) error
}

// UserLookup loads accounts on a principal cache miss.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens TokenParser
	Users  UserLookup
	// Cache is optional.
	Cache PrincipalCache
}

// Auth returns a middleware that authenticates requests with a bearer
// access token and injects the caller's principal into the context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fail := func(reason string) {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
			}

			token := extractBearerToken(r)
			if token == "" {
				fail("missing_token")
				return
			}

			claims, err := cfg.Tokens.Parse(token, auth.TokenAccess)
			if err != nil {
				if errors.Is(err, auth.ErrWrongTokenType) {
					fail("wrong_token_type")
				} else {
					fail("invalid_token")
				}
				return
			}

			p, cacheHit := lookupCachedPrincipal(r.Context(), cfg.Cache, claims.Subject)
			if p == nil {
				user, err := cfg.Users.GetUserByID(r.Context(), claims.Subject)
				if err != nil {
					if errors.Is(err, repository.ErrUserNotFound) {
						fail("unknown_user")
						return
					}
					cfg.Logger.Error("database error during auth",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w)
					return
				}
				p = user.Principal()
				if cfg.Cache != nil {
					_ = cfg.Cache.SetPrincipal(r.Context(), p)
				}
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", p.UserID),
				slog.Bool("is_staff", p.IsStaff),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func lookupCachedPrincipal(ctx context.Context, c PrincipalCache, userID string) (*model.Principal, bool) {
	if c == nil {
		return nil, false
	}
	p, err := c.GetPrincipal(ctx, userID)
	if err != nil || p == nil {
		return nil, false
	}
	return p, true
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
