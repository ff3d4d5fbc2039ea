package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TomasB/geodb/internal/geotest"
)

func TestParseCountries(t *testing.T) {
	countries, err := ParseCountries([]byte(geotest.Countries))
	require.NoError(t, err)
	require.Len(t, countries, 2)

	us := countries["US"]
	require.NotNil(t, us)
	require.Equal(t, "United States", us.Name)
	require.Equal(t, "USA", us.ISO3)
	require.Equal(t, uint32(840), us.ISONum)
	require.Equal(t, []string{"1"}, us.DialCodes)
	require.Equal(t, []string{"en-US", "es-US"}, us.LanguageCodes)
	require.Equal(t, uint32(6252001), us.GeonameID)
}

func TestParseCountries_JSON(t *testing.T) {
	raw := `[{"iso2": "DE", "iso3": "DEU", "name": "Germany", "dial_codes": ["49"]}]`

	countries, err := ParseCountries([]byte(raw))
	require.NoError(t, err)
	require.Equal(t, "Germany", countries["DE"].Name)
}

func TestParseCountries_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: ``, want: "empty"},
		{name: "bad iso2", raw: `[{iso2: USA}]`, want: "invalid iso2"},
		{name: "missing iso2", raw: `[{name: Nowhere}]`, want: "invalid iso2"},
		{name: "duplicate", raw: `[{iso2: US}, {iso2: US}]`, want: "duplicate"},
		{name: "not a list", raw: `iso2: US`, want: "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCountries([]byte(tt.raw))
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadCountries_MissingFile(t *testing.T) {
	_, err := LoadCountries(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
