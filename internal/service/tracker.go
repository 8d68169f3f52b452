package service

import (
	"clickify/internal/domain"
	"clickify/internal/ratelimit"
	"clickify/internal/repository"
	"clickify/pkg/clientip"
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// RateLimitMessage is shown to clients whose request was denied.
const RateLimitMessage = "Too many requests. Please try again later."

// Operation identities used as rate limit scopes.
const (
	OperationTrackClick    = "track_click"
	OperationTrackClickAPI = "track_click_api"
)

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeRateLimited
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeRateLimited:
		return "rate_limited"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of a tracking request. TargetURL is set for
// OutcomeSuccess, Message for OutcomeRateLimited.
type Outcome struct {
	Kind      OutcomeKind
	TargetURL string
	Message   string
}

func Success(targetURL string) Outcome {
	return Outcome{Kind: OutcomeSuccess, TargetURL: targetURL}
}

func NotFound() Outcome {
	return Outcome{Kind: OutcomeNotFound}
}

func RateLimited(message string) Outcome {
	return Outcome{Kind: OutcomeRateLimited, Message: message}
}

// trackRequest carries state between pipeline stages.
type trackRequest struct {
	operation string
	slug      string
	clientIP  string
	http      *http.Request
	link      *domain.TrackedLink
}

type step func(ctx context.Context, req *trackRequest) (Outcome, error)

type stage func(next step) step

// Tracker resolves a slug, applies the rate limit and records the click.
// Its pipeline is assembled once from the enabled stages.
type Tracker struct {
	storage  repository.Storage
	limiter  *ratelimit.Limiter
	recorder *ClickRecorder
	resolver *clientip.Resolver
	log      *zap.Logger

	pipeline step
}

func NewTracker(
	storage repository.Storage,
	limiter *ratelimit.Limiter,
	recorder *ClickRecorder,
	resolver *clientip.Resolver,
	log *zap.Logger,
) *Tracker {
	t := &Tracker{
		storage:  storage,
		limiter:  limiter,
		recorder: recorder,
		resolver: resolver,
		log:      log,
	}

	stages := []stage{t.resolveLink}
	if limiter != nil && limiter.Enabled() {
		stages = append(stages, t.rateLimit)
	}
	t.pipeline = chain(t.record, stages...)

	return t
}

// Track handles one request for slug on behalf of operation. Only
// unexpected failures (storage errors) are returned as errors.
func (t *Tracker) Track(ctx context.Context, operation, slug string, r *http.Request) (Outcome, error) {
	ip, _ := t.resolver.Resolve(r)

	return t.pipeline(ctx, &trackRequest{
		operation: operation,
		slug:      slug,
		clientIP:  ip,
		http:      r,
	})
}

func (t *Tracker) resolveLink(next step) step {
	return func(ctx context.Context, req *trackRequest) (Outcome, error) {
		link, err := t.storage.GetLinkBySlug(ctx, req.slug)
		if errors.Is(err, repository.ErrLinkNotFound) {
			t.log.Debug("slug not found", zap.String("slug", req.slug))
			return NotFound(), nil
		}
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to resolve slug %s: %w", req.slug, err)
		}
		if link.Destination() == "" {
			t.log.Debug("link has no target url", zap.String("slug", req.slug))
			return NotFound(), nil
		}

		req.link = link
		return next(ctx, req)
	}
}

func (t *Tracker) rateLimit(next step) step {
	return func(ctx context.Context, req *trackRequest) (Outcome, error) {
		if !t.limiter.CheckAndRecord(ctx, req.operation, req.clientIP) {
			t.log.Info("tracking request rate limited",
				zap.String("slug", req.slug),
				zap.String("operation", req.operation),
				zap.String("ip", req.clientIP))
			return RateLimited(RateLimitMessage), nil
		}
		return next(ctx, req)
	}
}

func (t *Tracker) record(ctx context.Context, req *trackRequest) (Outcome, error) {
	if _, err := t.recorder.Record(ctx, req.link, req.http); err != nil {
		return Outcome{}, err
	}
	return Success(req.link.Destination()), nil
}

// chain wraps final with stages; the first stage runs first.
func chain(final step, stages ...stage) step {
	s := final
	for i := len(stages) - 1; i >= 0; i-- {
		s = stages[i](s)
	}
	return s
}
