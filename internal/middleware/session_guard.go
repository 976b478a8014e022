package middleware

import "net/http"

type SessionChecker interface {
	HasSession() bool
}

// SessionGuard без сессии main-маршруты недоступны, отправляем на страницу входа
func SessionGuard(sc SessionChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !sc.HasSession() {
				http.Redirect(writer, request, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
