// internal/middleware/recover.go
package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/stocklot/stocklot/internal/respond"
)

// Recover converts handler panics into the generic 500 envelope.  The
// stack is logged, never sent to the caller.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zap.S().Errorw("panic recovered",
					"panic", rec,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				respond.Error(w, respond.ErrInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
