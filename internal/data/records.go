package data

// The records below decode only the parts of a GeoIP2 record the service
// exposes.  Pointer fields stay nil when the database omits the key, so
// callers can tell an absent value from a zero one.

// CountryData is the sparse decoding of a Country, City or Enterprise record.
type CountryData struct {
	Country *CountryBlock `maxminddb:"country"`
}

// CountryBlock is the "country" map of a GeoIP2 record.
type CountryBlock struct {
	GeoNameID *uint32           `maxminddb:"geoname_id"`
	ISOCode   *string           `maxminddb:"iso_code"`
	Names     map[string]string `maxminddb:"names"`
}

// CityData is the sparse decoding of a City or Enterprise record.
type CityData struct {
	City     *CityBlock     `maxminddb:"city"`
	Country  *CountryBlock  `maxminddb:"country"`
	Location *LocationBlock `maxminddb:"location"`
	Postal   *PostalBlock   `maxminddb:"postal"`
	Traits   *TraitsBlock   `maxminddb:"traits"`
}

// CityBlock is the "city" map of a GeoIP2 record.
type CityBlock struct {
	GeoNameID *uint32           `maxminddb:"geoname_id"`
	Names     map[string]string `maxminddb:"names"`
}

// LocationBlock is the "location" map of a GeoIP2 record.
type LocationBlock struct {
	AccuracyRadius *uint16  `maxminddb:"accuracy_radius"`
	Latitude       *float64 `maxminddb:"latitude"`
	Longitude      *float64 `maxminddb:"longitude"`
	MetroCode      *uint16  `maxminddb:"metro_code"`
	TimeZone       *string  `maxminddb:"time_zone"`
}

// PostalBlock is the "postal" map of a GeoIP2 record.
type PostalBlock struct {
	Code *string `maxminddb:"code"`
}

// TraitsBlock is the "traits" map of a GeoIP2 record.
type TraitsBlock struct {
	IsAnonymousProxy    *bool `maxminddb:"is_anonymous_proxy"`
	IsSatelliteProvider *bool `maxminddb:"is_satellite_provider"`
}
