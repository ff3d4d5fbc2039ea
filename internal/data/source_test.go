package data

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TomasB/geodb/internal/geotest"
)

func newTestSource(t *testing.T) (*FileSource, geotest.Paths) {
	t.Helper()

	p := geotest.WriteDataset(t)
	src := NewFileSource(slog.New(slog.NewTextHandler(io.Discard, nil)), FileSourceConfig{
		CountriesPath: p.Countries,
		CountryDBPath: p.CountryDB,
		CityDBPath:    p.CityDB,
		ASNDBPath:     p.ASNDB,
	})
	return src, p
}

func TestFileSource_LoadsAllResources(t *testing.T) {
	src, p := newTestSource(t)
	ctx := context.Background()

	require.Equal(t, []string{p.Countries, p.CountryDB, p.CityDB, p.ASNDB}, src.Paths())

	countries, err := src.Countries(ctx)
	require.NoError(t, err)
	require.Contains(t, countries, "US")

	country, err := src.CountryIndex(ctx)
	require.NoError(t, err)
	_, err = country.LookupCountry(net.ParseIP(geotest.IPUS))
	require.NoError(t, err)

	city, err := src.CityIndex(ctx)
	require.NoError(t, err)
	_, err = city.LookupCity(net.ParseIP(geotest.IPUS))
	require.NoError(t, err)

	asn, err := src.ASNIndex(ctx)
	require.NoError(t, err)
	_, err = asn.LookupASN(net.ParseIP(geotest.IPUS))
	require.NoError(t, err)
}

func TestFileSource_FailureReturnsNilInterface(t *testing.T) {
	src := NewFileSource(slog.New(slog.NewTextHandler(io.Discard, nil)), FileSourceConfig{
		ASNDBPath: "/nonexistent/asn.mmdb",
	})

	idx, err := src.ASNIndex(context.Background())
	require.Error(t, err)
	require.Nil(t, idx)
}

func TestFileSource_CanceledContext(t *testing.T) {
	src, _ := newTestSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Countries(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, err = src.CityIndex(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
