package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shelfmark/shelfmark-go/internal/crypto"
	"github.com/shelfmark/shelfmark-go/internal/logging"
	"github.com/shelfmark/shelfmark-go/internal/model"
	"github.com/shelfmark/shelfmark-go/internal/repository"
)

type contextKey string

const identityKey contextKey = "identity"

// UserResolver looks a user up by the token subject.
type UserResolver interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticate returns middleware that requires a valid Bearer token whose
// subject still resolves to a user. Every rejection gets the same 401 body.
func Authenticate(tokens *crypto.TokenIssuer, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				slog.DebugContext(r.Context(), "token rejected", "error", err)
				unauthorized(w)
				return
			}

			user, err := users.GetByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					unauthorized(w)
					return
				}
				logging.Error(r.Context(), "resolving token subject failed", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := WithIdentity(r.Context(), model.Identity{ID: user.ID, UserName: user.UserName})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the authenticated caller from the request context.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.MessageResponse{Message: msg})
}
