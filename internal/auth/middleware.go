package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lodgelist/lodgelist/internal/platform/httpx"
	"github.com/lodgelist/lodgelist/internal/shared"
)

// Middleware resolves the Authorization header into an actor. Requests
// without a token proceed as the anonymous guest; public listings stay
// browsable without credentials. A token that is present but unknown is
// rejected so clients learn their session expired.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := service.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrTokenUnknown) {
					httpx.Unauthorized(w, "session expired or revoked")
					return
				}
				if logger != nil {
					logger.Error("resolve token", slog.Any("error", err))
				}
				httpx.Unauthorized(w, "could not verify session")
				return
			}
			ctx := shared.ContextWithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
