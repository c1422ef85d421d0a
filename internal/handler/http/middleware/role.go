package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/account"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/handler/http/response"
)

// RequireApprover requires RH or SUPER_ADMIN role
func RequireApprover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, employee.ErrApproverRoleRequired)
			return
		}

		role, ok := claims["role"].(string)
		if !ok || !account.IsApproverRole(account.Role(role)) {
			response.HandleError(w, employee.ErrApproverRoleRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireActiveAccount requires an ACTIVE account status. Attendance routes
// use it so suspended or unapproved accounts are rejected at the edge.
func RequireActiveAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, account.ErrAccountInactive)
			return
		}

		status, ok := claims["account_status"].(string)
		if !ok || account.Status(status) != account.StatusActive {
			response.HandleError(w, account.ErrAccountInactive)
			return
		}

		next.ServeHTTP(w, r)
	})
}
