package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"funnel_backend/internal/enrichment/client"
	"funnel_backend/internal/enrichment/transport"
	"funnel_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type providerStub struct {
	personBody   string
	orgBody      string
	personCalls  atomic.Int64
	orgCalls     atomic.Int64
	personStatus int
}

func (p *providerStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/people/search":
			p.personCalls.Add(1)
			if p.personStatus != 0 {
				w.WriteHeader(p.personStatus)
				return
			}
			w.Write([]byte(p.personBody))
		case "/v1/organizations/search":
			p.orgCalls.Add(1)
			w.Write([]byte(p.orgBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestService(t *testing.T, stub *providerStub, cache *redis.Client) *Service {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)
	c := client.New(server.URL, "test-key", 5*time.Second, logger.New("development"))
	return New(c, cache, time.Minute, logger.New("development")).WithClock(func() time.Time { return testNow })
}

func TestEnrich_NormalizesSparsePersonRecord(t *testing.T) {
	stub := &providerStub{
		personBody: `{"data":[{"first_name":"Ana","last_name":"Ruiz","email":"ana@acme.test"}]}`,
	}
	svc := newTestService(t, stub, nil)

	results, err := svc.Enrich(context.Background(), transport.SearchRequest{Email: "ana@acme.test"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.Kind != transport.KindPerson {
		t.Errorf("expected person kind, got %s", got.Kind)
	}
	if got.FullName != "Ana Ruiz" {
		t.Errorf("expected full name joined from parts, got %q", got.FullName)
	}
	if got.Title != "" || got.LinkedInURL != "" || got.OrganizationName != "" {
		t.Error("absent provider fields must normalize to empty strings")
	}
	// 2 of the 5 key identity fields are filled: full name and email.
	if got.Confidence != 0.4 {
		t.Errorf("expected derived confidence 0.4, got %v", got.Confidence)
	}
	if got.Source != resultSource {
		t.Errorf("unexpected source %q", got.Source)
	}
	if !got.EnrichedAt.Equal(testNow) {
		t.Errorf("expected clock-driven enrichedAt, got %v", got.EnrichedAt)
	}
}

func TestEnrich_ProviderScoreIsClamped(t *testing.T) {
	stub := &providerStub{
		personBody: `{"data":[{"full_name":"Ana Ruiz","match_score":1.8}]}`,
	}
	svc := newTestService(t, stub, nil)

	results, err := svc.Enrich(context.Background(), transport.SearchRequest{Email: "ana@acme.test"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if results[0].Confidence != 1 {
		t.Errorf("expected confidence clamped to 1, got %v", results[0].Confidence)
	}
}

func TestEnrich_NoMatchReturnsEmptySlice(t *testing.T) {
	stub := &providerStub{personBody: `{"data":[]}`}
	svc := newTestService(t, stub, nil)

	results, err := svc.Enrich(context.Background(), transport.SearchRequest{Email: "nobody@acme.test"})
	if err != nil {
		t.Fatalf("no match must not be an error, got %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", results)
	}
}

func TestEnrich_RoutesByLookupKeys(t *testing.T) {
	stub := &providerStub{
		personBody: `{"data":[]}`,
		orgBody:    `{"data":[{"name":"Acme","domain":"acme.test","employee_count":250}]}`,
	}
	svc := newTestService(t, stub, nil)

	results, err := svc.Enrich(context.Background(), transport.SearchRequest{Domain: "acme.test"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if stub.personCalls.Load() != 0 {
		t.Error("domain-only lookup must not hit the person endpoint")
	}
	if stub.orgCalls.Load() != 1 {
		t.Fatalf("expected 1 organization call, got %d", stub.orgCalls.Load())
	}
	if len(results) != 1 || results[0].Kind != transport.KindOrganization {
		t.Fatalf("expected one organization result, got %+v", results)
	}
	if results[0].EmployeeCount != 250 {
		t.Errorf("expected employee count carried over, got %d", results[0].EmployeeCount)
	}
}

func TestEnrich_SecondLookupServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	stub := &providerStub{
		personBody: `{"data":[{"full_name":"Ana Ruiz","email":"ana@acme.test","match_score":0.9}]}`,
	}
	svc := newTestService(t, stub, cache)
	req := transport.SearchRequest{Email: "ana@acme.test"}

	first, err := svc.Enrich(context.Background(), req)
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	second, err := svc.Enrich(context.Background(), req)
	if err != nil {
		t.Fatalf("cached Enrich failed: %v", err)
	}

	if stub.personCalls.Load() != 1 {
		t.Fatalf("expected provider hit once, got %d calls", stub.personCalls.Load())
	}
	if len(second) != 1 || second[0].FullName != first[0].FullName {
		t.Fatalf("cached result must match the original, got %+v", second)
	}
}

func TestEnrich_ProviderFailurePropagates(t *testing.T) {
	stub := &providerStub{personStatus: http.StatusBadGateway}
	svc := newTestService(t, stub, nil)

	_, err := svc.Enrich(context.Background(), transport.SearchRequest{Email: "ana@acme.test"})
	var unavailable *client.ProviderUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ProviderUnavailableError, got %v", err)
	}
}
