package ratelimit

import (
	"context"

	"go.uber.org/zap"
)

const anonymous = "anonymous"

// Config holds the rate limit settings.
type Config struct {
	Enabled bool
	Rate    string // e.g. "5/m"
}

// Limiter admits or denies requests per (operation, client IP).
type Limiter struct {
	backend Backend
	rate    Rate
	enabled bool
	log     *zap.Logger
}

// New creates a limiter. An unparseable rate disables enforcement instead of
// failing start-up.
func New(cfg Config, backend Backend, log *zap.Logger) *Limiter {
	l := &Limiter{
		backend: backend,
		enabled: cfg.Enabled,
		log:     log,
	}
	if !cfg.Enabled {
		return l
	}

	rate, err := ParseRate(cfg.Rate)
	if err != nil {
		log.Warn("rate limit disabled: cannot parse rate", zap.String("rate", cfg.Rate), zap.Error(err))
		l.enabled = false
		return l
	}
	l.rate = rate

	log.Info("rate limit enabled",
		zap.Int64("limit", rate.Limit),
		zap.Duration("window", rate.Window),
		zap.String("backend", backend.Name()))
	return l
}

// Enabled reports whether requests are actually being counted.
func (l *Limiter) Enabled() bool {
	return l.enabled
}

// Rate returns the enforced rate; zero when disabled.
func (l *Limiter) Rate() Rate {
	return l.rate
}

// CheckAndRecord records a hit for clientIP on operation and reports whether
// it is admitted: allowed while hits <= limit. Backend errors admit the
// request.
func (l *Limiter) CheckAndRecord(ctx context.Context, operation, clientIP string) bool {
	if !l.enabled {
		return true
	}
	if clientIP == "" {
		clientIP = anonymous
	}

	hits, err := l.backend.Hit(ctx, Key(operation, clientIP), l.rate.Window)
	if err != nil {
		l.log.Warn("rate limit check failed, admitting request",
			zap.String("operation", operation),
			zap.String("ip", clientIP),
			zap.Error(err))
		return true
	}

	if hits > l.rate.Limit {
		l.log.Debug("rate limit exceeded",
			zap.String("operation", operation),
			zap.String("ip", clientIP),
			zap.Int64("hits", hits),
			zap.Int64("limit", l.rate.Limit))
		return false
	}
	return true
}
