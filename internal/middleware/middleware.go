package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/squaredbusinessman/storefront-client/internal/logger"
	"github.com/squaredbusinessman/storefront-client/internal/model"
)

type Middleware func(handler http.Handler) http.Handler

// Conveyor первый middleware в списке оказывается самым внутренним
func Conveyor(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, middleware := range middlewares {
		h = middleware(h)
	}
	return h
}

// ScreenReporter экран, на котором пользователь оказался после запроса
type ScreenReporter interface {
	Screen() model.Screen
}

// RequestLogger пишет access лог UI: маршрут chi, куда увел редирект и итоговый экран витрины
func RequestLogger(sr ScreenReporter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()
			lw := &logger.LoggingWriter{ResponseWriter: writer}

			// свой route context: chi подхватит его и после ответа в нем останется шаблон маршрута
			rctx := chi.NewRouteContext()
			request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))

			next.ServeHTTP(lw, request)

			fields := []zap.Field{
				zap.String("request_id", chiMiddleware.GetReqID(request.Context())),
				zap.String("method", request.Method),
				zap.String("path", request.URL.Path),
				zap.Int("status", lw.Status),
				zap.Int("bytes", lw.Bytes),
				zap.Duration("latency", time.Since(start)),
			}
			if pattern := rctx.RoutePattern(); pattern != "" {
				fields = append(fields, zap.String("route", pattern))
			}
			if lw.Location != "" {
				fields = append(fields, zap.String("redirect", lw.Location))
			}
			if sr != nil {
				fields = append(fields, zap.String("screen", string(sr.Screen())))
			}

			if ce := logger.Log.Check(lw.Level(), "UI request"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}
