package controllers

import (
	"net/http"

	"github.com/angelmondragon/storeadmin-backend/api/middleware"
	"github.com/angelmondragon/storeadmin-backend/api/responses"
	"github.com/angelmondragon/storeadmin-backend/internal/dashboard"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
)

// Dashboard serves the system summary to admins and a personal summary to
// everyone else.
func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		ctx := r.Context()
		summary, err := svc.Summary(ctx, middleware.UserUUIDFromContext(ctx), middleware.RoleFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
