package middleware

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/composables"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/httpapi"
)

// ActorHeader carries the acting user id. Identity is established
// upstream; the engine only needs a trusted numeric id.
const ActorHeader = "X-User-ID"

// RequireActor rejects requests without a valid actor id and exposes the
// id to handlers via the context.
func RequireActor() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(ActorHeader)
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "MISSING_ACTOR", "a valid "+ActorHeader+" header is required", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithActorID(r.Context(), uint(id))))
		})
	}
}
