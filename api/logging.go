package api

import (
	"emfdscore.com/emfd/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"net/http"
)

var defaultLogger = logger.NewLogger("API")

type endpointLoggerFields struct {
	Method string `json:"method"`
	Url    string `json:"url"`
}

const (
	RequestInfoFieldsKey = "request_info"
	RequestIDHeader      = "X-Request-Id"
)

// requestID returns the id sent by the caller or a fresh one.
func requestID(request *http.Request) string {
	if tid := request.Header.Get(RequestIDHeader); tid != "" {
		return tid
	}
	return uuid.NewString()
}

func makeRequestLogger(request *http.Request, tid string) zerolog.Logger {
	fields := endpointLoggerFields{
		Method: request.Method,
		Url:    request.URL.String(),
	}
	return defaultLogger.With().
		Interface(RequestInfoFieldsKey, fields).
		Str("tid", tid).
		Logger()
}
