package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
)

// Recovery turns panics into a 500 envelope. Stack traces reach the client only when exposeDetails is set.
func Recovery(logger *zap.Logger, exposeDetails bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				stack := debug.Stack()
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", stack),
				)
				if exposeDetails {
					response.ErrorWithDetails(w, http.StatusInternalServerError, response.CodeInternalError, "Internal server error",
						map[string]string{"panic": fmt.Sprint(rec), "stack": string(stack)})
					return
				}
				response.Error(w, http.StatusInternalServerError, response.CodeInternalError, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
