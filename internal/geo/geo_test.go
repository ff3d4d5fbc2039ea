package geo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/require"

	"github.com/TomasB/geodb/internal/data"
	"github.com/TomasB/geodb/internal/geotest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIndex implements the three index interfaces with canned records keyed
// by the IP string.  err, when set, is returned by every lookup.
type fakeIndex struct {
	countries map[string]*data.CountryData
	cities    map[string]*data.CityData
	asns      map[string]*geoip2.ASN
	err       error
}

func (f *fakeIndex) LookupCountry(ip net.IP) (*data.CountryData, error) {
	return fakeLookup(f.countries, ip, f.err)
}

func (f *fakeIndex) LookupCity(ip net.IP) (*data.CityData, error) {
	return fakeLookup(f.cities, ip, f.err)
}

func (f *fakeIndex) LookupASN(ip net.IP) (*geoip2.ASN, error) {
	return fakeLookup(f.asns, ip, f.err)
}

func fakeLookup[T any](m map[string]*T, ip net.IP, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	rec, ok := m[ip.String()]
	if !ok {
		return nil, data.ErrNotFound
	}
	return rec, nil
}

// fakeSources implements Sources with per-resource values and errors.
type fakeSources struct {
	mu sync.Mutex

	countries    data.Countries
	countryIndex data.CountryIndex
	cityIndex    data.CityIndex
	asnIndex     data.ASNIndex

	countriesErr    error
	countryIndexErr error
	cityIndexErr    error
	asnIndexErr     error

	builds int
}

func (f *fakeSources) Countries(context.Context) (data.Countries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds++
	return f.countries, f.countriesErr
}

func (f *fakeSources) CountryIndex(context.Context) (data.CountryIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countryIndex, f.countryIndexErr
}

func (f *fakeSources) CityIndex(context.Context) (data.CityIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cityIndex, f.cityIndexErr
}

func (f *fakeSources) ASNIndex(context.Context) (data.ASNIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.asnIndex, f.asnIndexErr
}

// buildCount returns how many rebuilds have started.
func (f *fakeSources) buildCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builds
}

// fileSources returns Sources reading the fixture dataset from disk.
func fileSources(t *testing.T) (*data.FileSource, geotest.Paths) {
	t.Helper()

	p := geotest.WriteDataset(t)
	return data.NewFileSource(discardLogger(), data.FileSourceConfig{
		CountriesPath: p.Countries,
		CountryDBPath: p.CountryDB,
		CityDBPath:    p.CityDB,
		ASNDBPath:     p.ASNDB,
	}), p
}

// newTestCoordinator returns a coordinator over a fresh dataset and gate.
func newTestCoordinator(src Sources) (*Coordinator, *Dataset, *Gate) {
	ds := NewDataset()
	gate := NewGate()
	c := NewCoordinator(CoordinatorConfig{
		Logger:  discardLogger(),
		Dataset: ds,
		Gate:    gate,
		Sources: src,
	})
	return c, ds, gate
}

// loadedDataset returns a dataset with the fixture snapshot published.
func loadedDataset(t *testing.T) *Dataset {
	t.Helper()

	src, _ := fileSources(t)
	c, ds, gate := newTestCoordinator(src)
	c.Handle(context.Background(), Changed())
	require.True(t, gate.Ready())
	return ds
}

var errBoom = errors.New("boom")
