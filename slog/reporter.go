package slog

import (
	"log/slog"

	"kbharvest"
)

// Ensure Reporter implements kbharvest.FetchReporter at compile time.
var _ kbharvest.FetchReporter = (*Reporter)(nil)

// Reporter logs every fetch attempt the orchestrator makes, one line
// per attempt. Successes log at debug, failures at warn, so the default
// output surfaces only the URLs that needed attention.
type Reporter struct {
	logger *slog.Logger
}

// NewReporter creates a Reporter writing to logger.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// ReportFetch logs a single fetch attempt.
func (r *Reporter) ReportFetch(a kbharvest.FetchAttempt) {
	attrs := []any{
		"url", a.URL,
		"method", string(a.Method),
		"status", string(a.Status),
		"elapsed", a.Elapsed,
	}
	if a.Err != nil {
		attrs = append(attrs, "error", kbharvest.ErrorMessage(a.Err))
	}
	if a.Status == kbharvest.FetchOK {
		r.logger.Debug("fetch attempt", attrs...)
		return
	}
	r.logger.Warn("fetch attempt", attrs...)
}
