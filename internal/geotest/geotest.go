// Package geotest contains MMDB and country fixtures shared by the tests of
// several packages.
package geotest

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
	"github.com/stretchr/testify/require"
)

// Addresses with known fixture data.
const (
	// IPUS has a full record in all three databases.
	IPUS = "8.8.8.8"
	// IPGB has a country record and a sparse city record.
	IPGB = "81.2.69.142"
	// IPGBv6 is an IPv6 address with a GB country record.
	IPGBv6 = "2a02:ff0::1"
	// IPNoISO has a country block without an ISO code and a record without
	// a city block.
	IPNoISO = "5.5.5.5"
	// IPUnknownCountry resolves to FR, which the countries table lacks.
	IPUnknownCountry = "6.6.6.6"
	// IPMissing is not present in any database.
	IPMissing = "9.9.9.9"
	// IPMissingV6 is not present in any database.
	IPMissingV6 = "2001:4860::1"
)

// Countries is a countries table with US and GB.
const Countries = `
- iso2: US
  iso3: USA
  iso_num: 840
  name: United States
  display_name: United States of America
  capital: Washington
  region: Americas
  continent_code: NA
  currency_code: USD
  currency_name: Dollar
  tld: .us
  geoname_id: 6252001
  dial_codes: ["1"]
  language_codes: [en-US, es-US]
- iso2: GB
  iso3: GBR
  iso_num: 826
  name: United Kingdom
  capital: London
  region: Europe
  continent_code: EU
  currency_code: GBP
  currency_name: Pound
  tld: .uk
  geoname_id: 2635167
  dial_codes: ["44"]
  language_codes: [en-GB, cy-GB, gd]
`

// CountriesV2 is Countries with the US name changed.
const CountriesV2 = `
- iso2: US
  iso3: USA
  iso_num: 840
  name: United States v2
  dial_codes: ["1"]
- iso2: GB
  iso3: GBR
  iso_num: 826
  name: United Kingdom v2
  dial_codes: ["44"]
`

// Paths holds the locations of a fixture dataset on disk.
type Paths struct {
	Countries string
	CountryDB string
	CityDB    string
	ASNDB     string
}

// WriteDataset writes the version 1 fixture dataset into a temporary
// directory.
func WriteDataset(t testing.TB) Paths {
	t.Helper()

	dir := t.TempDir()
	p := Paths{
		Countries: filepath.Join(dir, "countries.yaml"),
		CountryDB: filepath.Join(dir, "country.mmdb"),
		CityDB:    filepath.Join(dir, "city.mmdb"),
		ASNDB:     filepath.Join(dir, "asn.mmdb"),
	}

	WriteFile(t, p.Countries, Countries)
	WriteMMDB(t, p.CountryDB, "GeoLite2-Country", CountryRecords("US"))
	WriteMMDB(t, p.CityDB, "GeoLite2-City", CityRecords())
	WriteMMDB(t, p.ASNDB, "GeoLite2-ASN", ASNRecords(15169))

	return p
}

// WriteFile writes contents to path, replacing any existing file.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// WriteMMDB writes an MMDB database of the given type with one record per
// CIDR to path.
func WriteMMDB(t testing.TB, path, dbType string, records map[string]mmdbtype.Map) {
	t.Helper()

	w, err := mmdbwriter.New(mmdbwriter.Options{DatabaseType: dbType, RecordSize: 24})
	require.NoError(t, err)

	for cidr, rec := range records {
		_, network, err := net.ParseCIDR(cidr)
		require.NoError(t, err)
		require.NoError(t, w.Insert(network, rec))
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	_, err = w.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

// CountryRecords returns the country database records.  usISO is the code
// stored for the IPUS network, which lets tests swap in a new version.
func CountryRecords(usISO string) map[string]mmdbtype.Map {
	return map[string]mmdbtype.Map{
		"8.8.8.0/24": {
			"country": mmdbtype.Map{
				"iso_code":   mmdbtype.String(usISO),
				"geoname_id": mmdbtype.Uint32(6252001),
			},
		},
		"81.2.69.0/24": {
			"country": mmdbtype.Map{"iso_code": mmdbtype.String("GB")},
		},
		"2a02:ff0::/32": {
			"country": mmdbtype.Map{"iso_code": mmdbtype.String("GB")},
		},
		"5.5.5.0/24": {
			"country": mmdbtype.Map{
				"names": mmdbtype.Map{"en": mmdbtype.String("Nowhere")},
			},
		},
		"6.6.6.0/24": {
			"country": mmdbtype.Map{"iso_code": mmdbtype.String("FR")},
		},
	}
}

// CityRecords returns the city database records.
func CityRecords() map[string]mmdbtype.Map {
	return map[string]mmdbtype.Map{
		"8.8.8.0/24": {
			"city": mmdbtype.Map{
				"geoname_id": mmdbtype.Uint32(5375480),
				"names": mmdbtype.Map{
					"en": mmdbtype.String("Mountain View"),
					"de": mmdbtype.String("Mountain View DE"),
				},
			},
			"country": mmdbtype.Map{"iso_code": mmdbtype.String("US")},
			"location": mmdbtype.Map{
				"accuracy_radius": mmdbtype.Uint16(1000),
				"latitude":        mmdbtype.Float64(37.386),
				"longitude":       mmdbtype.Float64(-122.0838),
				"metro_code":      mmdbtype.Uint16(807),
				"time_zone":       mmdbtype.String("America/Los_Angeles"),
			},
			"postal": mmdbtype.Map{"code": mmdbtype.String("94035")},
			"traits": mmdbtype.Map{
				"is_anonymous_proxy":    mmdbtype.Bool(false),
				"is_satellite_provider": mmdbtype.Bool(true),
			},
		},
		"81.2.69.0/24": {
			"city": mmdbtype.Map{
				"names": mmdbtype.Map{"de": mmdbtype.String("London DE")},
			},
			"location": mmdbtype.Map{
				"latitude":  mmdbtype.Float64(51.5142),
				"longitude": mmdbtype.Float64(-0.0931),
			},
		},
		"5.5.5.0/24": {
			"country": mmdbtype.Map{"iso_code": mmdbtype.String("US")},
		},
	}
}

// ASNRecords returns the ASN database records.  usASN is the number stored
// for the IPUS network.
func ASNRecords(usASN uint32) map[string]mmdbtype.Map {
	return map[string]mmdbtype.Map{
		"8.8.8.0/24": {
			"autonomous_system_number":       mmdbtype.Uint32(usASN),
			"autonomous_system_organization": mmdbtype.String("GOOGLE"),
		},
		"81.2.69.0/24": {
			"autonomous_system_number": mmdbtype.Uint32(20712),
		},
		"5.5.5.0/24": {},
	}
}
