package geo

import (
	"fmt"

	"github.com/oschwald/geoip2-golang"

	"github.com/TomasB/geodb/internal/data"
)

// policy tells what happens when the source value of a field rule is absent.
type policy uint8

const (
	// policyRequired fails the projection with KindRecordIncomplete.
	policyRequired policy = iota + 1
	// policyOptional leaves the target unset.
	policyOptional
	// policyDefault sets the target to its default value.
	policyDefault
)

// String implements the fmt.Stringer interface for policy.
func (p policy) String() string {
	switch p {
	case policyRequired:
		return "required"
	case policyOptional:
		return "optional"
	case policyDefault:
		return "default"
	default:
		return "unknown"
	}
}

// fieldRule maps one field of a sparse database record to a field of a
// result.  apply copies the value when present and reports whether it was.
type fieldRule[S, D any] struct {
	source string
	target string
	policy policy
	apply  func(src *S, dst *D) (present bool)
}

// project applies rules in order.  It stops at the first absent field whose
// policy is policyRequired.
func project[S, D any](op string, rules []fieldRule[S, D], src *S, dst *D) error {
	for _, r := range rules {
		if r.apply(src, dst) || r.policy != policyRequired {
			continue
		}
		return newError(KindRecordIncomplete, op, fmt.Errorf("missing %s", r.source))
	}
	return nil
}

// countryKey is the part of a country record needed to join the metadata.
type countryKey struct {
	iso2 string
}

var countryFields = []fieldRule[data.CountryData, countryKey]{{
	source: "country",
	target: "-",
	policy: policyRequired,
	apply: func(src *data.CountryData, _ *countryKey) bool {
		return src.Country != nil
	},
}, {
	source: "country.iso_code",
	target: "iso2",
	policy: policyRequired,
	apply: func(src *data.CountryData, dst *countryKey) bool {
		if src.Country.ISOCode == nil || *src.Country.ISOCode == "" {
			return false
		}
		dst.iso2 = *src.Country.ISOCode
		return true
	},
}}

var cityFields = []fieldRule[data.CityData, CityResult]{{
	source: "city",
	target: "-",
	policy: policyRequired,
	apply: func(src *data.CityData, _ *CityResult) bool {
		return src.City != nil
	},
}, {
	source: "city.names.en",
	target: "name",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		name, ok := src.City.Names["en"]
		if ok {
			dst.Name = name
		}
		return ok
	},
}, {
	source: "city.geoname_id",
	target: "geoname_id",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		if src.City.GeoNameID == nil {
			return false
		}
		dst.GeonameID = ptr(int64(*src.City.GeoNameID))
		return true
	},
}, {
	source: "country.iso_code",
	target: "country_iso2",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		if src.Country == nil || src.Country.ISOCode == nil {
			return false
		}
		dst.CountryISO2 = *src.Country.ISOCode
		return true
	},
}, {
	// Coordinates default to zero inside a location block.
	source: "location",
	target: "latitude,longitude",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		loc := src.Location
		if loc == nil {
			return false
		}
		dst.Latitude = ptr(valueOr(loc.Latitude))
		dst.Longitude = ptr(valueOr(loc.Longitude))
		return true
	},
}, {
	source: "location.metro_code",
	target: "metro_code",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		if src.Location == nil || src.Location.MetroCode == nil {
			return false
		}
		dst.MetroCode = ptr(uint32(*src.Location.MetroCode))
		return true
	},
}, {
	source: "location.time_zone",
	target: "time_zone",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		if src.Location == nil || src.Location.TimeZone == nil {
			return false
		}
		dst.TimeZone = ptr(*src.Location.TimeZone)
		return true
	},
}, {
	source: "location.accuracy_radius",
	target: "radius",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		if src.Location == nil || src.Location.AccuracyRadius == nil {
			return false
		}
		dst.AccuracyRadius = ptr(uint32(*src.Location.AccuracyRadius))
		return true
	},
}, {
	source: "postal.code",
	target: "postal_code",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		if src.Postal == nil || src.Postal.Code == nil {
			return false
		}
		dst.PostalCode = ptr(*src.Postal.Code)
		return true
	},
}, {
	source: "traits.is_anonymous_proxy",
	target: "is_anonymous_proxy",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		if src.Traits == nil || src.Traits.IsAnonymousProxy == nil {
			return false
		}
		dst.IsAnonymousProxy = ptr(*src.Traits.IsAnonymousProxy)
		return true
	},
}, {
	source: "traits.is_satellite_provider",
	target: "is_satellite_provider",
	policy: policyOptional,
	apply: func(src *data.CityData, dst *CityResult) bool {
		if src.Traits == nil || src.Traits.IsSatelliteProvider == nil {
			return false
		}
		dst.IsSatelliteProvider = ptr(*src.Traits.IsSatelliteProvider)
		return true
	},
}}

// The geoip2 ASN record already decodes absent keys as zero values, which
// are the defaults.
var asnFields = []fieldRule[geoip2.ASN, ASNResult]{{
	source: "autonomous_system_number",
	target: "autonomous_system_number",
	policy: policyDefault,
	apply: func(src *geoip2.ASN, dst *ASNResult) bool {
		dst.Number = uint32(src.AutonomousSystemNumber)
		return src.AutonomousSystemNumber != 0
	},
}, {
	source: "autonomous_system_organization",
	target: "autonomous_system_org",
	policy: policyDefault,
	apply: func(src *geoip2.ASN, dst *ASNResult) bool {
		dst.Organization = src.AutonomousSystemOrganization
		return src.AutonomousSystemOrganization != ""
	},
}}

func ptr[T any](v T) *T {
	return &v
}

func valueOr[T any](p *T) (v T) {
	if p != nil {
		v = *p
	}
	return v
}
