package service

import (
	"clickify/internal/domain"
	"clickify/internal/geo"
	"clickify/internal/repository"
	"clickify/pkg/clientip"
	"clickify/pkg/useragent"
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ClickRecorder builds click events from requests and persists them.
type ClickRecorder struct {
	storage  repository.Storage
	resolver *clientip.Resolver
	locator  geo.Locator
	parser   *useragent.Parser
	log      *zap.Logger
}

// NewClickRecorder creates a recorder. parser may be nil, in which case no
// device information is stored.
func NewClickRecorder(
	storage repository.Storage,
	resolver *clientip.Resolver,
	locator geo.Locator,
	parser *useragent.Parser,
	log *zap.Logger,
) *ClickRecorder {
	return &ClickRecorder{
		storage:  storage,
		resolver: resolver,
		locator:  locator,
		parser:   parser,
		log:      log,
	}
}

// Record stores one click on link for the request. Geolocation is only
// attempted for routable addresses and never fails the call; a storage error
// is returned as is.
func (c *ClickRecorder) Record(ctx context.Context, link *domain.TrackedLink, r *http.Request) (*domain.ClickEvent, error) {
	ip, routable := c.resolver.Resolve(r)

	click := &domain.ClickEvent{
		LinkID:    link.ID,
		IPAddress: ip,
		UserAgent: r.Header.Get("User-Agent"),
		Ref:       ReferralTag(r),
	}

	var g errgroup.Group
	if routable {
		g.Go(func() error {
			click.Country, click.City = c.locator.Locate(ctx, ip)
			return nil
		})
	}
	if c.parser != nil {
		g.Go(func() error {
			info := c.parser.Parse(click.UserAgent)
			click.DeviceType = known(info.DeviceType)
			click.Browser = known(info.Browser)
			click.OS = known(info.OS)
			return nil
		})
	}
	_ = g.Wait()

	if err := c.storage.CreateClick(ctx, click); err != nil {
		return nil, fmt.Errorf("failed to record click for %s: %w", link.Slug, err)
	}

	c.log.Debug("click recorded",
		zap.String("slug", link.Slug),
		zap.String("ip", ip),
		zap.Bool("routable", routable),
		zap.Stringp("country", click.Country),
		zap.Stringp("ref", click.Ref))

	return click, nil
}

func known(s string) *string {
	if s == "" || s == useragent.Unknown {
		return nil
	}
	return &s
}
