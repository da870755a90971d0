package appwrite

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type loggingTransport struct {
	next http.RoundTripper
	log  *zap.Logger
}

// LoggingTransport wraps next with structured request logging.
// Only metadata is logged: bodies and credentials never are.
func LoggingTransport(next http.RoundTripper, log *zap.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, log: log}
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	if err != nil {
		t.log.Warn("backend",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("dur", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}
	t.log.Debug("backend",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)
	return resp, nil
}
