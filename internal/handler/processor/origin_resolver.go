package processor

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/config"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/filter"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/storage"
	"github.com/pkg/errors"
)

const cloudFrontSuffix = ".cloudfront.net"

// OriginSettings configures the origin resolution.
type OriginSettings struct {
	// Mode is one of config.OriginModeDynamic, config.OriginModeBucket or config.OriginModeURL.
	Mode    string
	Bucket  string
	BaseURL string
	// DistributionDomains are edge hosts that must never be fetched from.
	DistributionDomains []string
}

type originResolverProcessor struct {
	logger   *slog.Logger
	settings OriginSettings
}

// NewOriginResolverProcessor returns the stage that derives the storage location of the requested object.
func NewOriginResolverProcessor(settings OriginSettings, opts ...Option) Processor {
	_inst := &originResolverProcessor{settings: settings, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *originResolverProcessor) Name() string { return "origin-resolver" }

func (p *originResolverProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:origin-resolver")
}

func (p *originResolverProcessor) Process(_ context.Context, bus *filter.Bus) error {
	var err error
	switch p.settings.Mode {
	case config.OriginModeBucket:
		bus.Location = storage.Location{Bucket: p.settings.Bucket}
	case config.OriginModeURL:
		err = p.resolveURL(bus)
	default:
		err = p.resolveDynamic(bus)
	}
	if err != nil {
		p.logger.Info("origin unresolved", slog.Any("error", err))
		return &filter.OriginUnresolvedError{Cause: err}
	}
	p.logger.Debug("origin resolved", slog.String("location", bus.Location.String()))
	return nil
}

func (p *originResolverProcessor) resolveDynamic(bus *filter.Bus) error {
	origin := bus.Request.Origin
	if origin == nil || origin.S3 == nil {
		return errors.New("request has no s3 origin")
	}
	domain := strings.ToLower(strings.TrimSpace(origin.S3.DomainName))
	if domain == "" {
		return errors.New("s3 origin has no domain name")
	}
	if p.isDistribution(domain, bus.Distribution) {
		return errors.Errorf("s3 origin %s is an edge distribution", domain)
	}

	bus.Location = storage.Location{
		Bucket: BucketFromDomain(domain),
		Region: origin.S3.Region,
	}
	bus.KeyPrefix = strings.Trim(origin.S3.Path, "/")
	return nil
}

func (p *originResolverProcessor) resolveURL(bus *filter.Bus) error {
	u, err := url.Parse(p.settings.BaseURL)
	if err != nil {
		return errors.Wrap(err, "invalid base URL")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("base URL %q is not absolute", p.settings.BaseURL)
	}
	if p.isDistribution(strings.ToLower(u.Hostname()), bus.Distribution) {
		return errors.Errorf("base URL %s targets an edge distribution", u.Host)
	}
	bus.Location = storage.Location{BaseURL: p.settings.BaseURL}
	return nil
}

func (p *originResolverProcessor) isDistribution(host, current string) bool {
	if strings.HasSuffix(host, cloudFrontSuffix) {
		return true
	}
	if current != "" && strings.EqualFold(host, current) {
		return true
	}
	return slices.ContainsFunc(p.settings.DistributionDomains, func(d string) bool {
		return strings.EqualFold(host, d)
	})
}

// BucketFromDomain extracts the bucket name from an S3 origin domain name.
// Virtual-hosted domains ("bucket.s3.region.amazonaws.com") keep dotted bucket names intact;
// any other domain yields its leading label.
func BucketFromDomain(domain string) string {
	for _, marker := range []string{".s3.", ".s3-"} {
		if idx := strings.Index(domain, marker); idx > 0 {
			return domain[:idx]
		}
	}
	bucket, _, _ := strings.Cut(domain, ".")
	return bucket
}
