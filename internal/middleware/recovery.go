package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"fleet-backend/pkg/utils"
)

// PanicRecovery turns a handler panic into a JSON 500 so one bad request
// cannot take down the server loop.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[Recovery] panic on %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				utils.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
