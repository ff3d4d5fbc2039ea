package geo

// CityResult is the normalized city record for an IP address.  Pointer fields
// are nil when the database does not provide the value.
type CityResult struct {
	Name        string
	CountryISO2 string

	GeonameID *int64

	// Latitude and Longitude are set together whenever the record has a
	// location block.
	Latitude  *float64
	Longitude *float64

	MetroCode      *uint32
	TimeZone       *string
	AccuracyRadius *uint32
	PostalCode     *string

	IsAnonymousProxy    *bool
	IsSatelliteProvider *bool
}

// ASNResult is the normalized autonomous system record for an IP address.
// Missing values are reported as zero.
type ASNResult struct {
	Number       uint32
	Organization string
}
