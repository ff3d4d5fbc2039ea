package data

import (
	"errors"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// ErrNotFound is returned by the index lookups when the database holds no
// record for the address.
var ErrNotFound = errors.New("address not found in database")

// CountryIndex defines the interface for IP-to-country block lookups.
type CountryIndex interface {
	// LookupCountry returns the sparse country record for the given IP address.
	// Returns ErrNotFound if the database has no record for ip.
	LookupCountry(ip net.IP) (*CountryData, error)
}

// CityIndex defines the interface for IP-to-city lookups.
type CityIndex interface {
	// LookupCity returns the sparse city record for the given IP address.
	// Returns ErrNotFound if the database has no record for ip.
	LookupCity(ip net.IP) (*CityData, error)
}

// ASNIndex defines the interface for IP-to-ASN lookups.
type ASNIndex interface {
	// LookupASN returns the autonomous system record for the given IP address.
	// Returns ErrNotFound if the database has no record for ip.
	LookupASN(ip net.IP) (*geoip2.ASN, error)
}
