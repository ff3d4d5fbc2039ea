package lookup

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TomasB/geodb/internal/auth"
	"github.com/TomasB/geodb/internal/data"
	"github.com/TomasB/geodb/internal/geo"
	geodbv1 "github.com/TomasB/geodb/pkg/geodb/v1"
)

const testKey = "test-key"

// mockLookup implements Lookup for testing.
type mockLookup struct {
	country *data.Country
	city    *geo.CityResult
	asn     *geo.ASNResult
	err     error

	calls int
}

func (m *mockLookup) CountryByIP(_ net.IP) (*data.Country, error) {
	m.calls++
	return m.country, m.err
}

func (m *mockLookup) CountryByISO(_ string) (*data.Country, error) {
	m.calls++
	return m.country, m.err
}

func (m *mockLookup) CityByIP(_ net.IP) (*geo.CityResult, error) {
	m.calls++
	return m.city, m.err
}

func (m *mockLookup) ASNByIP(_ net.IP) (*geo.ASNResult, error) {
	m.calls++
	return m.asn, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openGate() *geo.Gate {
	g := geo.NewGate()
	g.Open()
	return g
}

func setupRouter(lookup Lookup, gate *geo.Gate) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(discardLogger(), lookup, auth.NewKeySet(testKey), nil)
	h.Register(r, gate)
	return r
}

func doGet(router http.Handler, path, key string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("Authorization", key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func usCountry() *data.Country {
	return &data.Country{
		ISO2:      "US",
		ISO3:      "USA",
		Name:      "United States",
		DialCodes: []string{"1"},
	}
}

func TestCountryByIP_OK(t *testing.T) {
	router := setupRouter(&mockLookup{country: usCountry()}, openGate())

	w := doGet(router, "/country/ip/8.8.8.8", testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != geodbv1.ContentType {
		t.Errorf("expected content type %s, got %s", geodbv1.ContentType, ct)
	}

	var resp geodbv1.Country
	if err := resp.Unmarshal(w.Body.Bytes()); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Name != "United States" {
		t.Errorf("expected name United States, got %s", resp.Name)
	}
	if len(resp.DialCodes) != 1 || resp.DialCodes[0] != "1" {
		t.Errorf("expected dial codes [1], got %v", resp.DialCodes)
	}
	if resp.ISO3 != "USA" {
		t.Errorf("expected iso3 USA, got %s", resp.ISO3)
	}
}

func TestCountryByISO_OK(t *testing.T) {
	router := setupRouter(&mockLookup{country: usCountry()}, openGate())

	w := doGet(router, "/country/iso/US", testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp geodbv1.Country
	if err := resp.Unmarshal(w.Body.Bytes()); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ISO2 != "US" {
		t.Errorf("expected iso2 US, got %s", resp.ISO2)
	}
}

func TestCountryByISO_InvalidLengthIgnoresAuth(t *testing.T) {
	for _, key := range []string{"", "wrong", testKey} {
		lookup := &mockLookup{country: usCountry()}
		router := setupRouter(lookup, openGate())

		for _, code := range []string{"USA", "U"} {
			w := doGet(router, "/country/iso/"+code, key)
			if w.Code != http.StatusBadRequest {
				t.Errorf("code %q key %q: expected 400, got %d", code, key, w.Code)
			}
			if w.Body.Len() != 0 {
				t.Errorf("expected empty body, got %q", w.Body.String())
			}
		}
		if lookup.calls != 0 {
			t.Errorf("expected no lookups, got %d", lookup.calls)
		}
	}
}

func TestInvalidIPIgnoresAuth(t *testing.T) {
	lookup := &mockLookup{country: usCountry()}
	router := setupRouter(lookup, openGate())

	for _, path := range []string{"/country/ip/not-an-ip", "/city/999.1.1.1", "/asn/8.8.8"} {
		w := doGet(router, path, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
	if lookup.calls != 0 {
		t.Errorf("expected no lookups, got %d", lookup.calls)
	}
}

func TestUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "missing header", key: ""},
		{name: "unknown key", key: "wrong"},
		{name: "bearer prefix", key: "Bearer " + testKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &mockLookup{country: usCountry(), asn: &geo.ASNResult{}}
			router := setupRouter(lookup, openGate())

			for _, path := range []string{"/country/ip/8.8.8.8", "/country/iso/US", "/city/8.8.8.8", "/asn/8.8.8.8"} {
				w := doGet(router, path, tt.key)
				if w.Code != http.StatusUnauthorized {
					t.Errorf("%s: expected 401, got %d", path, w.Code)
				}
				if w.Body.Len() != 0 {
					t.Errorf("%s: expected empty body, got %q", path, w.Body.String())
				}
			}
			if lookup.calls != 0 {
				t.Errorf("expected no lookups, got %d", lookup.calls)
			}
		})
	}
}

func TestLookupErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: geo.ErrNotFound, want: http.StatusBadRequest},
		{name: "lookup failed", err: geo.ErrLookupFailed, want: http.StatusBadRequest},
		{name: "record incomplete", err: geo.ErrRecordIncomplete, want: http.StatusBadRequest},
		{name: "invalid query", err: geo.ErrInvalidQuery, want: http.StatusBadRequest},
		{name: "not initialized", err: geo.ErrNotInitialized, want: http.StatusServiceUnavailable},
		{name: "unclassified", err: io.ErrUnexpectedEOF, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&mockLookup{err: tt.err}, openGate())

			for _, path := range []string{"/country/ip/8.8.8.8", "/country/iso/US", "/city/8.8.8.8", "/asn/8.8.8.8"} {
				w := doGet(router, path, testKey)
				if w.Code != tt.want {
					t.Errorf("%s: expected %d, got %d", path, tt.want, w.Code)
				}
				if w.Body.Len() != 0 {
					t.Errorf("%s: expected empty body, got %q", path, w.Body.String())
				}
			}
		})
	}
}

func TestEncodeFailed(t *testing.T) {
	router := setupRouter(&mockLookup{country: &data.Country{ISO2: "US", Name: "\xff"}}, openGate())

	w := doGet(router, "/country/iso/US", testKey)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestCityByIP_OmitsAbsentFields(t *testing.T) {
	lat, lon := 51.5142, -0.0931
	router := setupRouter(&mockLookup{city: &geo.CityResult{Latitude: &lat, Longitude: &lon}}, openGate())

	w := doGet(router, "/city/81.2.69.142", testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp geodbv1.City
	if err := resp.Unmarshal(w.Body.Bytes()); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Latitude == nil || *resp.Latitude != lat {
		t.Errorf("expected latitude %v, got %v", lat, resp.Latitude)
	}
	if resp.GeonameID != nil || resp.TimeZone != nil || resp.IsAnonymousProxy != nil {
		t.Errorf("expected absent optional fields, got %+v", resp)
	}
	if resp.Name != "" {
		t.Errorf("expected empty name, got %s", resp.Name)
	}
}

func TestASNByIP_ZeroValuesEncoded(t *testing.T) {
	router := setupRouter(&mockLookup{asn: &geo.ASNResult{}}, openGate())

	w := doGet(router, "/asn/5.5.5.5", testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Fatal("expected both asn fields on the wire")
	}

	var resp geodbv1.Asn
	if err := resp.Unmarshal(w.Body.Bytes()); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AutonomousSystemNumber != 0 || resp.AutonomousSystemOrg != "" {
		t.Errorf("expected zero asn, got %+v", resp)
	}
}

func TestRequireReady_HoldsUntilOpen(t *testing.T) {
	gate := geo.NewGate()
	router := setupRouter(&mockLookup{country: usCountry()}, gate)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- doGet(router, "/country/iso/US", testKey)
	}()

	select {
	case w := <-done:
		t.Fatalf("request finished before the gate opened with status %d", w.Code)
	case <-time.After(50 * time.Millisecond):
	}

	gate.Open()

	select {
	case w := <-done:
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("request still held after the gate opened")
	}
}

func TestRequireReady_ClientGone(t *testing.T) {
	router := setupRouter(&mockLookup{country: usCountry()}, geo.NewGate())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/country/iso/US", nil)
	req.Header.Set("Authorization", testKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind geo.Kind
		want int
	}{
		{geo.KindInvalidQuery, http.StatusBadRequest},
		{geo.KindLookupFailed, http.StatusBadRequest},
		{geo.KindRecordIncomplete, http.StatusBadRequest},
		{geo.KindNotFound, http.StatusBadRequest},
		{geo.KindUnauthorized, http.StatusUnauthorized},
		{geo.KindNotInitialized, http.StatusServiceUnavailable},
		{geo.KindEncodeFailed, http.StatusInternalServerError},
		{geo.KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.kind); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.kind, tt.want, got)
		}
	}
}
