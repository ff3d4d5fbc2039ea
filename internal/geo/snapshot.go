package geo

import (
	"net"
	"sync/atomic"

	"github.com/oschwald/geoip2-golang"

	"github.com/TomasB/geodb/internal/data"
)

// Snapshot is an immutable view of the dataset: the three GeoIP indexes and
// the country metadata table.  Any of them may be nil until it has been built
// once.
type Snapshot struct {
	// Generation is incremented each time a snapshot is published.
	Generation uint64

	countries    data.Countries
	countryIndex data.CountryIndex
	cityIndex    data.CityIndex
	asnIndex     data.ASNIndex
}

// resources holds freshly built sub-resources.  A nil field means the
// sub-resource was not rebuilt and the previous one is kept.
type resources struct {
	countries    data.Countries
	countryIndex data.CountryIndex
	cityIndex    data.CityIndex
	asnIndex     data.ASNIndex
}

// derive returns a new snapshot that takes every non-nil sub-resource from r
// and the rest from s.  s may be nil.
func (s *Snapshot) derive(r resources) *Snapshot {
	next := &Snapshot{}
	if s != nil {
		*next = *s
	}
	next.Generation++

	if r.countries != nil {
		next.countries = r.countries
	}
	if r.countryIndex != nil {
		next.countryIndex = r.countryIndex
	}
	if r.cityIndex != nil {
		next.cityIndex = r.cityIndex
	}
	if r.asnIndex != nil {
		next.asnIndex = r.asnIndex
	}

	return next
}

// lookupCountry returns the metadata for an ISO2 code.
func (s *Snapshot) lookupCountry(iso2 string) (*data.Country, bool) {
	c, ok := s.countries[iso2]
	return c, ok && c != nil
}

// lookupCountryBlock resolves ip in the country index.
func (s *Snapshot) lookupCountryBlock(ip net.IP) (*data.CountryData, error) {
	return s.countryIndex.LookupCountry(ip)
}

// lookupCity resolves ip in the city index.
func (s *Snapshot) lookupCity(ip net.IP) (*data.CityData, error) {
	return s.cityIndex.LookupCity(ip)
}

// lookupAsn resolves ip in the ASN index.
func (s *Snapshot) lookupAsn(ip net.IP) (*geoip2.ASN, error) {
	return s.asnIndex.LookupASN(ip)
}

// Dataset publishes the current Snapshot to concurrent readers.  Only the
// Coordinator replaces it.
type Dataset struct {
	current atomic.Pointer[Snapshot]
}

// NewDataset returns a Dataset with no snapshot.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Snapshot returns the current snapshot, or nil if none has been published.
func (d *Dataset) Snapshot() *Snapshot {
	return d.current.Load()
}

func (d *Dataset) publish(s *Snapshot) {
	d.current.Store(s)
}
