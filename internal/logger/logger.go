package logger

import (
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingWriter запоминает статус, размер и адрес редиректа ответа UI сервера для access лога
type LoggingWriter struct {
	http.ResponseWriter
	Status   int
	Bytes    int
	Location string
}

func (lw *LoggingWriter) WriteHeader(code int) {
	if lw.Status == 0 {
		lw.Status = code
		if code >= 300 && code < 400 {
			lw.Location = lw.Header().Get("Location")
		}
	}
	lw.ResponseWriter.WriteHeader(code)
}

func (lw *LoggingWriter) Write(b []byte) (int, error) {
	if lw.Status == 0 {
		lw.Status = http.StatusOK
	}
	n, err := lw.ResponseWriter.Write(b)
	lw.Bytes += n
	return n, err
}

// Level 5xx в error, 4xx в warn, остальное info
func (lw *LoggingWriter) Level() zapcore.Level {
	switch {
	case lw.Status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case lw.Status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Log глобальный логгер, до Initialize молчит
var Log *zap.Logger = zap.NewNop()

func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.InitialFields = map[string]interface{}{"app": "storefront"}

	zapLog, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = zapLog
	return nil
}

// Sync сбрасывает буферы, ошибку stderr sync игнорируем
func Sync() {
	_ = Log.Sync()
}
