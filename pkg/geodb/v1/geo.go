// Package geodbv1 holds the geodb response messages and their Protocol
// Buffers wire encoding.  The schema is in geo.proto.
package geodbv1

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// ContentType is the media type of encoded messages served over HTTP.
const ContentType = "application/x-protobuf"

// Message is implemented by every type in this package.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

// IPRequest asks for the record of an IP address.
type IPRequest struct {
	IP string
}

// Marshal encodes r.
func (r *IPRequest) Marshal() ([]byte, error) {
	var e encoder
	e.str(1, r.IP)
	return e.result()
}

// Unmarshal decodes b into r.
func (r *IPRequest) Unmarshal(b []byte) error {
	*r = IPRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return consumeString(typ, b, func(v string) { r.IP = v })
		}
		return 0
	})
}

// ISORequest asks for the record of an ISO 3166-1 alpha-2 code.
type ISORequest struct {
	Code string
}

// Marshal encodes r.
func (r *ISORequest) Marshal() ([]byte, error) {
	var e encoder
	e.str(1, r.Code)
	return e.result()
}

// Unmarshal decodes b into r.
func (r *ISORequest) Unmarshal(b []byte) error {
	*r = ISORequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return consumeString(typ, b, func(v string) { r.Code = v })
		}
		return 0
	})
}

// Country is the country metadata record.
type Country struct {
	ISO2          string
	ISO3          string
	ISONum        uint32
	Name          string
	DisplayName   string
	Capital       string
	Region        string
	ContinentCode string
	CurrencyCode  string
	CurrencyName  string
	TLD           string
	GeonameID     uint32
	DialCodes     []string
	LanguageCodes []string
}

// Marshal encodes c.  Empty fields are omitted.
func (c *Country) Marshal() ([]byte, error) {
	var e encoder
	e.str(1, c.ISO2)
	e.str(2, c.ISO3)
	e.varint(3, uint64(c.ISONum))
	e.str(4, c.Name)
	e.str(5, c.DisplayName)
	e.str(6, c.Capital)
	e.str(7, c.Region)
	e.str(8, c.ContinentCode)
	e.str(9, c.CurrencyCode)
	e.str(10, c.CurrencyName)
	e.str(11, c.TLD)
	e.varint(12, uint64(c.GeonameID))
	e.strs(13, c.DialCodes)
	e.strs(14, c.LanguageCodes)
	return e.result()
}

// Unmarshal decodes b into c.
func (c *Country) Unmarshal(b []byte) error {
	*c = Country{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, func(v string) { c.ISO2 = v })
		case 2:
			return consumeString(typ, b, func(v string) { c.ISO3 = v })
		case 3:
			return consumeVarint(typ, b, func(v uint64) { c.ISONum = uint32(v) })
		case 4:
			return consumeString(typ, b, func(v string) { c.Name = v })
		case 5:
			return consumeString(typ, b, func(v string) { c.DisplayName = v })
		case 6:
			return consumeString(typ, b, func(v string) { c.Capital = v })
		case 7:
			return consumeString(typ, b, func(v string) { c.Region = v })
		case 8:
			return consumeString(typ, b, func(v string) { c.ContinentCode = v })
		case 9:
			return consumeString(typ, b, func(v string) { c.CurrencyCode = v })
		case 10:
			return consumeString(typ, b, func(v string) { c.CurrencyName = v })
		case 11:
			return consumeString(typ, b, func(v string) { c.TLD = v })
		case 12:
			return consumeVarint(typ, b, func(v uint64) { c.GeonameID = uint32(v) })
		case 13:
			return consumeString(typ, b, func(v string) { c.DialCodes = append(c.DialCodes, v) })
		case 14:
			return consumeString(typ, b, func(v string) { c.LanguageCodes = append(c.LanguageCodes, v) })
		}
		return 0
	})
}

// City is the city record of an IP address.  Pointer fields are nil when the
// database has no value for them and are then left off the wire.
type City struct {
	Name        string
	CountryISO2 string

	GeonameID           *int64
	Latitude            *float64
	Longitude           *float64
	MetroCode           *uint32
	TimeZone            *string
	Radius              *uint32
	PostalCode          *string
	IsAnonymousProxy    *bool
	IsSatelliteProvider *bool
}

// Marshal encodes c.
func (c *City) Marshal() ([]byte, error) {
	var e encoder
	e.str(1, c.Name)
	e.str(2, c.CountryISO2)
	e.optInt64(3, c.GeonameID)
	e.optDouble(4, c.Latitude)
	e.optDouble(5, c.Longitude)
	e.optUint32(6, c.MetroCode)
	e.optStr(7, c.TimeZone)
	e.optUint32(8, c.Radius)
	e.optStr(9, c.PostalCode)
	e.optBool(10, c.IsAnonymousProxy)
	e.optBool(11, c.IsSatelliteProvider)
	return e.result()
}

// Unmarshal decodes b into c.
func (c *City) Unmarshal(b []byte) error {
	*c = City{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, func(v string) { c.Name = v })
		case 2:
			return consumeString(typ, b, func(v string) { c.CountryISO2 = v })
		case 3:
			return consumeVarint(typ, b, func(v uint64) { c.GeonameID = ptr(int64(v)) })
		case 4:
			return consumeDouble(typ, b, func(v float64) { c.Latitude = ptr(v) })
		case 5:
			return consumeDouble(typ, b, func(v float64) { c.Longitude = ptr(v) })
		case 6:
			return consumeVarint(typ, b, func(v uint64) { c.MetroCode = ptr(uint32(v)) })
		case 7:
			return consumeString(typ, b, func(v string) { c.TimeZone = ptr(v) })
		case 8:
			return consumeVarint(typ, b, func(v uint64) { c.Radius = ptr(uint32(v)) })
		case 9:
			return consumeString(typ, b, func(v string) { c.PostalCode = ptr(v) })
		case 10:
			return consumeVarint(typ, b, func(v uint64) { c.IsAnonymousProxy = ptr(protowire.DecodeBool(v)) })
		case 11:
			return consumeVarint(typ, b, func(v uint64) { c.IsSatelliteProvider = ptr(protowire.DecodeBool(v)) })
		}
		return 0
	})
}

// Asn is the autonomous system record of an IP address.  Both fields are
// always encoded, zero when unknown.
type Asn struct {
	AutonomousSystemNumber uint32
	AutonomousSystemOrg    string
}

// Marshal encodes a.
func (a *Asn) Marshal() ([]byte, error) {
	var e encoder
	e.forceVarint(1, uint64(a.AutonomousSystemNumber))
	e.forceStr(2, a.AutonomousSystemOrg)
	return e.result()
}

// Unmarshal decodes b into a.
func (a *Asn) Unmarshal(b []byte) error {
	*a = Asn{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeVarint(typ, b, func(v uint64) { a.AutonomousSystemNumber = uint32(v) })
		case 2:
			return consumeString(typ, b, func(v string) { a.AutonomousSystemOrg = v })
		}
		return 0
	})
}
