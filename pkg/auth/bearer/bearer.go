// Package bearer authenticates service-to-service requests carrying a
// signed bearer token in the Authorization header.
//
// Tokens are HS256 JWTs minted under the deployment's service key with
// Issue and checked by the Validator middleware. Requests without an
// Authorization header pass through untouched so the session cookie
// pipeline keeps working for browser callers; a presented but invalid
// bearer token is rejected outright.
package bearer

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/geleit/geleit/pkg/api"
	"github.com/geleit/geleit/pkg/auth"
	"github.com/geleit/geleit/pkg/observability"
	"github.com/geleit/geleit/pkg/storage"
	"github.com/geleit/geleit/pkg/transport"
)

// Issuer is the iss claim minted into and required from every service
// token.
const Issuer = "geleit"

// Validator checks bearer tokens against the shared service key.
type Validator struct {
	key []byte
}

// NewValidator creates a validator for tokens signed with key.
func NewValidator(key []byte) *Validator {
	return &Validator{key: key}
}

// Middleware authenticates requests that carry a bearer token. A valid
// token replaces any session cookie outcome already stashed by the
// resolve middleware; requests without an Authorization header, or with
// a non-Bearer scheme, are left for the cookie pipeline.
func Middleware(v *Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			authCtx, tenant, err := v.validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				slog.Warn("bearer token rejected",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				observability.BearerAuthTotal.WithLabelValues("invalid").Inc()
				transport.WriteAPIError(w, api.NewNoAuthError())
				return
			}

			slog.Debug("bearer token accepted", "user_id", authCtx.UserID, "path", r.URL.Path)
			observability.BearerAuthTotal.WithLabelValues("success").Inc()

			ctx := r.Context()
			if tenant != "" {
				ctx = storage.SetTenant(ctx, tenant)
			}
			ctx = auth.WithResult(ctx, &auth.Result{Context: authCtx})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validate parses and verifies a raw token, returning the auth context
// and the tenant claim when present.
func (v *Validator) validate(tokenStr string) (*auth.Context, string, error) {
	if tokenStr == "" {
		return nil, "", fmt.Errorf("empty bearer token")
	}

	token, err := jwtlib.Parse(tokenStr, func(token *jwtlib.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.key, nil
	},
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || !token.Valid {
		return nil, "", fmt.Errorf("invalid token claims")
	}

	sub := claimString(claims, "sub")
	if sub == "" {
		return nil, "", fmt.Errorf("token missing sub claim")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, "", fmt.Errorf("sub claim %q is not a user id", sub)
	}

	authCtx, err := auth.NewContext(userID)
	if err != nil {
		return nil, "", err
	}

	return authCtx, claimString(claims, "tenant_id"), nil
}

// Issue mints a service token for userID, signed with key. The tenant
// is carried in the tenant_id claim when non-empty.
func Issue(key []byte, userID int64, tenant string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtlib.MapClaims{
		"iss": Issuer,
		"sub": strconv.FormatInt(userID, 10),
		"iat": jwtlib.NewNumericDate(now),
		"exp": jwtlib.NewNumericDate(now.Add(ttl)),
	}
	if tenant != "" {
		claims["tenant_id"] = tenant
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(key)
}

// claimString extracts a string claim, empty when missing or not a
// string.
func claimString(claims jwtlib.MapClaims, key string) string {
	val, ok := claims[key]
	if !ok {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		return ""
	}
	return s
}
