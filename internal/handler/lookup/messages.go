package lookup

import (
	"github.com/TomasB/geodb/internal/data"
	"github.com/TomasB/geodb/internal/geo"
	geodbv1 "github.com/TomasB/geodb/pkg/geodb/v1"
)

// CountryMessage converts country metadata to its wire message.
func CountryMessage(c *data.Country) *geodbv1.Country {
	return &geodbv1.Country{
		ISO2:          c.ISO2,
		ISO3:          c.ISO3,
		ISONum:        c.ISONum,
		Name:          c.Name,
		DisplayName:   c.DisplayName,
		Capital:       c.Capital,
		Region:        c.Region,
		ContinentCode: c.ContinentCode,
		CurrencyCode:  c.CurrencyCode,
		CurrencyName:  c.CurrencyName,
		TLD:           c.TLD,
		GeonameID:     c.GeonameID,
		DialCodes:     c.DialCodes,
		LanguageCodes: c.LanguageCodes,
	}
}

// CityMessage converts a city result to its wire message.
func CityMessage(c *geo.CityResult) *geodbv1.City {
	return &geodbv1.City{
		Name:                c.Name,
		CountryISO2:         c.CountryISO2,
		GeonameID:           c.GeonameID,
		Latitude:            c.Latitude,
		Longitude:           c.Longitude,
		MetroCode:           c.MetroCode,
		TimeZone:            c.TimeZone,
		Radius:              c.AccuracyRadius,
		PostalCode:          c.PostalCode,
		IsAnonymousProxy:    c.IsAnonymousProxy,
		IsSatelliteProvider: c.IsSatelliteProvider,
	}
}

// ASNMessage converts an ASN result to its wire message.
func ASNMessage(a *geo.ASNResult) *geodbv1.Asn {
	return &geodbv1.Asn{
		AutonomousSystemNumber: a.Number,
		AutonomousSystemOrg:    a.Organization,
	}
}
