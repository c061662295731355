// Package service normalizes raw provider records into the fixed
// EnrichmentResult shape. Normalization is the whole job here: the
// client owns transport, callers own merging.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"funnel_backend/internal/enrichment/client"
	"funnel_backend/internal/enrichment/transport"
	"funnel_backend/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const resultSource = "enrichment-provider"

// Service handles enrichment lookups with normalization and caching.
type Service struct {
	client   *client.Client
	cache    *redis.Client
	cacheTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new enrichment service. cache may be nil; lookups then
// always go to the provider.
func New(c *client.Client, cache *redis.Client, cacheTTL time.Duration, log *logger.Logger) *Service {
	return &Service{
		client:   c,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the service clock for deterministic timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Enrich resolves the request against the provider and returns the
// normalized records. An empty result set is a valid outcome and comes
// back as an empty slice with a nil error.
func (s *Service) Enrich(ctx context.Context, req transport.SearchRequest) ([]transport.EnrichmentResult, error) {
	key := cacheKey(req)
	if cached, ok := s.getFromCache(ctx, key); ok {
		return cached, nil
	}

	var (
		persons []client.PersonRecord
		orgs    []client.OrganizationRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	if wantsPerson(req) {
		g.Go(func() error {
			records, err := s.client.PersonSearch(gctx, client.PersonSearchBody{
				Email:     req.Email,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Company:   req.Company,
				SocialURL: req.SocialURL,
			})
			if err != nil {
				return err
			}
			persons = records
			return nil
		})
	}
	if wantsOrganization(req) {
		g.Go(func() error {
			records, err := s.client.OrganizationSearch(gctx, client.OrganizationSearchBody{
				Name:   req.Company,
				Domain: req.Domain,
			})
			if err != nil {
				return err
			}
			orgs = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	results := make([]transport.EnrichmentResult, 0, len(persons)+len(orgs))
	for _, p := range persons {
		results = append(results, normalizePerson(p, now))
	}
	for _, o := range orgs {
		results = append(results, normalizeOrganization(o, now))
	}

	s.setCache(ctx, key, results)
	return results, nil
}

// wantsPerson reports whether the request carries person lookup keys.
func wantsPerson(req transport.SearchRequest) bool {
	return req.Email != "" || (req.FirstName != "" && req.LastName != "") || req.SocialURL != ""
}

// wantsOrganization reports whether the request carries org lookup keys.
func wantsOrganization(req transport.SearchRequest) bool {
	return req.Company != "" || req.Domain != ""
}

func normalizePerson(p client.PersonRecord, now time.Time) transport.EnrichmentResult {
	result := transport.EnrichmentResult{
		Kind:               transport.KindPerson,
		FullName:           deref(p.FullName),
		FirstName:          deref(p.FirstName),
		LastName:           deref(p.LastName),
		Email:              deref(p.Email),
		Title:              deref(p.Title),
		Location:           deref(p.Location),
		LinkedInURL:        deref(p.LinkedInURL),
		TwitterURL:         deref(p.TwitterURL),
		PhotoURL:           deref(p.PhotoURL),
		OrganizationName:   deref(p.OrganizationName),
		OrganizationDomain: deref(p.OrganizationSite),
		Source:             resultSource,
		EnrichedAt:         now,
	}
	if result.FullName == "" && (result.FirstName != "" || result.LastName != "") {
		result.FullName = joinName(result.FirstName, result.LastName)
	}
	result.Confidence = confidence(p.Confidence,
		result.FullName, result.Email, result.Title, result.LinkedInURL, result.OrganizationName)
	return result
}

func normalizeOrganization(o client.OrganizationRecord, now time.Time) transport.EnrichmentResult {
	result := transport.EnrichmentResult{
		Kind:               transport.KindOrganization,
		FullName:           deref(o.Name),
		Location:           deref(o.Location),
		LinkedInURL:        deref(o.LinkedInURL),
		TwitterURL:         deref(o.TwitterURL),
		WebsiteURL:         deref(o.WebsiteURL),
		PhotoURL:           deref(o.LogoURL),
		OrganizationName:   deref(o.Name),
		OrganizationDomain: deref(o.Domain),
		Industry:           deref(o.Industry),
		Source:             resultSource,
		EnrichedAt:         now,
	}
	if o.EmployeeCount != nil {
		result.EmployeeCount = *o.EmployeeCount
	}
	result.Confidence = confidence(o.Confidence,
		result.OrganizationName, result.OrganizationDomain, result.WebsiteURL, result.LinkedInURL, result.Industry)
	return result
}

// confidence prefers the provider's match score; absent one, it is the
// share of key identity fields the record actually filled.
func confidence(provided *float64, fields ...string) float64 {
	if provided != nil {
		switch {
		case *provided < 0:
			return 0
		case *provided > 1:
			return 1
		default:
			return *provided
		}
	}
	if len(fields) == 0 {
		return 0
	}
	filled := 0
	for _, f := range fields {
		if f != "" {
			filled++
		}
	}
	return float64(filled) / float64(len(fields))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

func cacheKey(req transport.SearchRequest) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return "enrichment:v1:" + hex.EncodeToString(sum[:])
}

func (s *Service) getFromCache(ctx context.Context, key string) ([]transport.EnrichmentResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Debug("enrichment cache read failed", "error", err)
		}
		return nil, false
	}
	var results []transport.EnrichmentResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, true
}

func (s *Service) setCache(ctx context.Context, key string, results []transport.EnrichmentResult) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.log.Debug("enrichment cache write failed", "error", err)
	}
}
