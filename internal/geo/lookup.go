package geo

import (
	"errors"
	"fmt"
	"net"

	"github.com/TomasB/geodb/internal/data"
)

// Operation names used in errors and metrics.
const (
	OpCountryByIP  = "country_by_ip"
	OpCountryByISO = "country_by_iso"
	OpCityByIP     = "city_by_ip"
	OpASNByIP      = "asn_by_ip"
)

// CountryByIP returns the country metadata for the country ip belongs to.
func (d *Dataset) CountryByIP(ip net.IP) (*data.Country, error) {
	return countryByIP(d.Snapshot(), ip)
}

// CountryByISO returns the country metadata for a two-letter ISO code.
func (d *Dataset) CountryByISO(code string) (*data.Country, error) {
	return countryByISO(d.Snapshot(), code)
}

// CityByIP returns the city record for ip.
func (d *Dataset) CityByIP(ip net.IP) (*CityResult, error) {
	return cityByIP(d.Snapshot(), ip)
}

// ASNByIP returns the autonomous system record for ip.
func (d *Dataset) ASNByIP(ip net.IP) (*ASNResult, error) {
	return asnByIP(d.Snapshot(), ip)
}

func countryByIP(s *Snapshot, ip net.IP) (*data.Country, error) {
	const op = OpCountryByIP

	if s == nil || s.countryIndex == nil || s.countries == nil {
		return nil, newError(KindNotInitialized, op, nil)
	}
	if ip == nil {
		return nil, newError(KindInvalidQuery, op, errors.New("ip is required"))
	}

	rec, err := s.lookupCountryBlock(ip)
	if err != nil {
		return nil, indexError(op, err)
	}

	var key countryKey
	if err = project(op, countryFields, rec, &key); err != nil {
		return nil, err
	}

	c, ok := s.lookupCountry(key.iso2)
	if !ok {
		return nil, newError(KindNotFound, op, fmt.Errorf("no metadata for country %s", key.iso2))
	}
	return c, nil
}

func countryByISO(s *Snapshot, code string) (*data.Country, error) {
	const op = OpCountryByISO

	if len(code) != 2 {
		return nil, newError(KindInvalidQuery, op, fmt.Errorf("iso2 code %q must be 2 characters", code))
	}
	if s == nil || s.countries == nil {
		return nil, newError(KindNotInitialized, op, nil)
	}

	c, ok := s.lookupCountry(code)
	if !ok {
		return nil, newError(KindNotFound, op, fmt.Errorf("no metadata for country %s", code))
	}
	return c, nil
}

func cityByIP(s *Snapshot, ip net.IP) (*CityResult, error) {
	const op = OpCityByIP

	if s == nil || s.cityIndex == nil {
		return nil, newError(KindNotInitialized, op, nil)
	}
	if ip == nil {
		return nil, newError(KindInvalidQuery, op, errors.New("ip is required"))
	}

	rec, err := s.lookupCity(ip)
	if err != nil {
		return nil, indexError(op, err)
	}

	res := &CityResult{}
	if err = project(op, cityFields, rec, res); err != nil {
		return nil, err
	}
	return res, nil
}

func asnByIP(s *Snapshot, ip net.IP) (*ASNResult, error) {
	const op = OpASNByIP

	if s == nil || s.asnIndex == nil {
		return nil, newError(KindNotInitialized, op, nil)
	}
	if ip == nil {
		return nil, newError(KindInvalidQuery, op, errors.New("ip is required"))
	}

	rec, err := s.lookupAsn(ip)
	if err != nil {
		return nil, indexError(op, err)
	}

	res := &ASNResult{}
	if err = project(op, asnFields, rec, res); err != nil {
		return nil, err
	}
	return res, nil
}

// indexError classifies an error returned by an index lookup.
func indexError(op string, err error) error {
	if errors.Is(err, data.ErrNotFound) {
		return newError(KindNotFound, op, err)
	}
	return newError(KindLookupFailed, op, err)
}
