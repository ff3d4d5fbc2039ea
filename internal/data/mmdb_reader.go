package data

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

// Database type fragments accepted by each index.  A City database also
// carries the country block, and an ISP database carries the ASN fields.
var (
	countryTypes = []string{"Country", "City", "Enterprise"}
	cityTypes    = []string{"City", "Enterprise"}
	asnTypes     = []string{"ASN", "ISP"}
)

// MmdbReader implements CountryIndex, CityIndex and ASNIndex on top of a
// MaxMind MMDB file held in memory.
//
// An MmdbReader is never closed.  The file contents are owned by the reader
// and released by the garbage collector once the last lookup that holds the
// reader returns, so a reader replaced during a refresh stays valid for any
// request still using it.
type MmdbReader struct {
	db   *maxminddb.Reader
	path string
}

// NewCountryReader opens a database usable for country lookups.
func NewCountryReader(path string) (*MmdbReader, error) {
	return openMmdb(path, countryTypes)
}

// NewCityReader opens a database usable for city lookups.
func NewCityReader(path string) (*MmdbReader, error) {
	return openMmdb(path, cityTypes)
}

// NewASNReader opens a database usable for ASN lookups.
func NewASNReader(path string) (*MmdbReader, error) {
	return openMmdb(path, asnTypes)
}

// openMmdb reads the MMDB file at path into memory and checks that its
// database type contains one of the accepted fragments.
func openMmdb(path string, accepted []string) (*MmdbReader, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MMDB file: %w", err)
	}

	db, err := maxminddb.FromBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open MMDB file %s: %w", path, err)
	}

	dbType := db.Metadata.DatabaseType
	for _, a := range accepted {
		if strings.Contains(dbType, a) {
			return &MmdbReader{db: db, path: path}, nil
		}
	}

	return nil, fmt.Errorf("MMDB file %s has database type %q, want one of %v", path, dbType, accepted)
}

// DatabaseType returns the type string from the database metadata.
func (r *MmdbReader) DatabaseType() string {
	return r.db.Metadata.DatabaseType
}

// BuildTime returns the build time from the database metadata.
func (r *MmdbReader) BuildTime() time.Time {
	return time.Unix(int64(r.db.Metadata.BuildEpoch), 0).UTC()
}

// LookupCountry returns the sparse country record for the given IP address.
func (r *MmdbReader) LookupCountry(ip net.IP) (*CountryData, error) {
	var rec CountryData
	if err := r.lookup(ip, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LookupCity returns the sparse city record for the given IP address.
func (r *MmdbReader) LookupCity(ip net.IP) (*CityData, error) {
	var rec CityData
	if err := r.lookup(ip, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LookupASN returns the ASN record for the given IP address.  Missing fields
// keep their zero values.
func (r *MmdbReader) LookupASN(ip net.IP) (*geoip2.ASN, error) {
	var rec geoip2.ASN
	if err := r.lookup(ip, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// lookup resolves ip to a data section offset and decodes it into result.
func (r *MmdbReader) lookup(ip net.IP, result any) error {
	offset, err := r.db.LookupOffset(ip)
	if err != nil {
		return fmt.Errorf("lookup in %s failed: %w", r.path, err)
	}
	if offset == maxminddb.NotFound {
		return ErrNotFound
	}

	if err := r.db.Decode(offset, result); err != nil {
		return fmt.Errorf("decoding record from %s failed: %w", r.path, err)
	}
	return nil
}
