package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/api/responses"
	pkgAuth "github.com/angelmondragon/storeadmin-backend/pkg/auth"
	"github.com/angelmondragon/storeadmin-backend/pkg/auth/session"
	"github.com/angelmondragon/storeadmin-backend/pkg/config"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
)

// UserLookup loads the account behind a token so deactivated users are
// rejected even while their token is still valid.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth requires a valid bearer token backed by a live session. When users is
// set the account must exist and be active, and its stored role replaces the
// role in the token.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, users UserLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authenticate(r, cfg, sessions, users)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserID(ctx, principal.UserID.String()), string(principal.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, sessions session.AccessSessionChecker, users UserLookup) (Principal, error) {
	ctx := r.Context()
	token := BearerToken(r)
	if token == "" {
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return Principal{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if sessions != nil {
		live, err := sessions.HasSession(ctx, claims.ID)
		if err != nil {
			return Principal{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !live {
			return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}

	principal := Principal{UserID: claims.UserID, Role: claims.Role, AccessToken: token}
	if users == nil {
		return principal, nil
	}

	user, err := users.FindByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
	case err != nil:
		return Principal{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	case !user.IsActive:
		return Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is inactive")
	}
	if user.Role.IsValid() {
		principal.Role = user.Role
	}
	return principal, nil
}

// BearerToken returns the credential from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
