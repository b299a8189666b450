package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/ingredient-intel/iie/internal/cache"
	"github.com/ingredient-intel/iie/internal/capability"
	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	"github.com/ingredient-intel/iie/internal/resilience"
)

func testHierarchy() *cache.Hierarchy {
	return cache.New(cache.Config{L1MaxEntries: 100, L1TTL: time.Minute, L2TTL: 0, L3TTL: 0}, nil, nil, nil)
}

func TestFDAFetcher_ParsesApprovedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sources":["FDA"],"status":"approved"}`))
	}))
	defer srv.Close()

	rc := resilience.NewRequestCache(testHierarchy(), 0)
	f := NewFDAFetcher(srv.URL, rc)

	frag, err := f.Fetch(context.Background(), ingredient.CanonicalName("water"))
	require.NoError(t, err)
	assert.Equal(t, safety.RiskSafe, frag.RiskLevel)
	assert.Equal(t, safety.RegistryFDA, frag.RegistryID)
}

func TestFDAFetcher_NotFoundOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	rc := resilience.NewRequestCache(testHierarchy(), 0)
	f := NewFDAFetcher(srv.URL, rc)

	_, err := f.Fetch(context.Background(), ingredient.CanonicalName("unobtainium"))
	require.Error(t, err)
}

func TestHTTPFetcher_CachesSuccessfulResponse(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"sources":["FDA"],"status":"approved"}`))
	}))
	defer srv.Close()

	h := testHierarchy()
	rc := resilience.NewRequestCache(h, 0)
	f := NewFDAFetcher(srv.URL, rc)

	_, err := f.Fetch(context.Background(), ingredient.CanonicalName("glycerin"))
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), ingredient.CanonicalName("glycerin"))
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "a second lookup for the same ingredient must be served from the Request Cache")
}

func TestHTMLParse_ExtractTextByClass(t *testing.T) {
	doc := `<html><body><div class="cir-finding safe">Safe as used</div></body></html>`
	node, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	texts := extractText(node, "div", "cir-finding")
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Safe as used")
}

func TestClassifyConcernText_FindsKeywords(t *testing.T) {
	concerns := classifyConcernText("Known skin irritant and suspected endocrine disruptor")
	assert.Contains(t, concerns, "irritant")
	assert.Contains(t, concerns, "endocrine")
}

type stubFetcher struct {
	id   safety.RegistryID
	frag *safety.RegistryFragment
	err  error
}

func (s *stubFetcher) RegistryID() safety.RegistryID { return s.id }
func (s *stubFetcher) Fetch(ctx context.Context, name ingredient.CanonicalName) (*safety.RegistryFragment, error) {
	return s.frag, s.err
}

func TestScheduler_FetchAllRespectsCapsAndIsolatesFailures(t *testing.T) {
	good := &stubFetcher{id: safety.RegistryFDA, frag: &safety.RegistryFragment{RegistryID: safety.RegistryFDA, RiskLevel: safety.RiskSafe}}
	bad := &stubFetcher{id: safety.RegistryEWG, err: notFound("ewg", "x")}

	s := NewScheduler(4, map[safety.RegistryID]int{safety.RegistryFDA: 1})
	fetchers := []capability.RegistryFetcher{good, bad}
	results := s.FetchAll(context.Background(), ingredient.CanonicalName("water"), fetchers)

	require.Len(t, results, 2)
	var sawGood, sawBad bool
	for _, r := range results {
		if r.RegistryID == safety.RegistryFDA {
			sawGood = r.Err == nil
		}
		if r.RegistryID == safety.RegistryEWG {
			sawBad = r.Err != nil
		}
	}
	assert.True(t, sawGood)
	assert.True(t, sawBad)
}
