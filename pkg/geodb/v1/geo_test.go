package geodbv1

import (
	"testing"

	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCountry_OmitsEmptyFields(t *testing.T) {
	b, err := (&Country{ISO2: "US"}).Marshal()
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x02, 'U', 'S'}, b)

	b, err = (&Country{}).Marshal()
	require.NoError(t, err)
	require.Empty(t, b)
}

func TestCountry_RoundTrip(t *testing.T) {
	in := &Country{
		ISO2:          "US",
		ISO3:          "USA",
		ISONum:        840,
		Name:          "United States",
		DisplayName:   "United States of America",
		Capital:       "Washington",
		Region:        "Americas",
		ContinentCode: "NA",
		CurrencyCode:  "USD",
		CurrencyName:  "Dollar",
		TLD:           ".us",
		GeonameID:     6252001,
		DialCodes:     []string{"1"},
		LanguageCodes: []string{"en-US", "es-US"},
	}

	b, err := in.Marshal()
	require.NoError(t, err)

	var out Country
	require.NoError(t, out.Unmarshal(b))
	require.Equal(t, in, &out)
}

func TestCity_OptionalZeroValuesArePresent(t *testing.T) {
	in := &City{
		Name:                "Null Island",
		Latitude:            ptr(0.0),
		Longitude:           ptr(0.0),
		IsSatelliteProvider: ptr(false),
	}

	b, err := in.Marshal()
	require.NoError(t, err)

	var out City
	require.NoError(t, out.Unmarshal(b))
	require.Equal(t, in, &out)
	require.NotNil(t, out.Latitude)
	require.NotNil(t, out.IsSatelliteProvider)
	require.Nil(t, out.IsAnonymousProxy)
	require.Nil(t, out.GeonameID)
	require.Empty(t, out.CountryISO2)
}

func TestCity_RoundTrip(t *testing.T) {
	in := &City{
		Name:                "Mountain View",
		CountryISO2:         "US",
		GeonameID:           ptr(int64(5375480)),
		Latitude:            ptr(37.386),
		Longitude:           ptr(-122.0838),
		MetroCode:           ptr(uint32(807)),
		TimeZone:            ptr("America/Los_Angeles"),
		Radius:              ptr(uint32(1000)),
		PostalCode:          ptr("94035"),
		IsAnonymousProxy:    ptr(false),
		IsSatelliteProvider: ptr(true),
	}

	b, err := in.Marshal()
	require.NoError(t, err)

	var out City
	require.NoError(t, out.Unmarshal(b))
	require.Equal(t, in, &out)
}

func TestAsn_AlwaysEncoded(t *testing.T) {
	b, err := (&Asn{}).Marshal()
	require.NoError(t, err)
	require.Equal(t, []byte{0x08, 0x00, 0x12, 0x00}, b)

	var out Asn
	require.NoError(t, out.Unmarshal(b))
	require.Equal(t, Asn{}, out)
}

func TestMarshal_InvalidUTF8(t *testing.T) {
	_, err := (&Country{ISO2: "US", Name: "\xff"}).Marshal()
	require.Error(t, err)

	_, err = (&City{TimeZone: ptr("\xfe")}).Marshal()
	require.Error(t, err)

	_, err = (&Asn{AutonomousSystemOrg: "\xc3"}).Marshal()
	require.Error(t, err)
}

func TestUnmarshal_SkipsUnknownFields(t *testing.T) {
	b, err := (&Asn{AutonomousSystemNumber: 15169, AutonomousSystemOrg: "GOOGLE"}).Marshal()
	require.NoError(t, err)

	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, 100, protowire.BytesType)
	b = protowire.AppendString(b, "ignored")

	var out Asn
	require.NoError(t, out.Unmarshal(b))
	require.Equal(t, Asn{AutonomousSystemNumber: 15169, AutonomousSystemOrg: "GOOGLE"}, out)
}

func TestUnmarshal_Truncated(t *testing.T) {
	b, err := (&Country{ISO2: "US", Name: "United States"}).Marshal()
	require.NoError(t, err)

	var out Country
	require.Error(t, out.Unmarshal(b[:len(b)-3]))
}

func TestCodec(t *testing.T) {
	var c Codec
	require.Equal(t, "proto", c.Name())

	b, err := c.Marshal(&ISORequest{Code: "GB"})
	require.NoError(t, err)
	var req ISORequest
	require.NoError(t, c.Unmarshal(b, &req))
	require.Equal(t, "GB", req.Code)

	b, err = c.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	require.NoError(t, err)
	var resp healthpb.HealthCheckResponse
	require.NoError(t, c.Unmarshal(b, &resp))
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	_, err = c.Marshal("plain string")
	require.Error(t, err)
	require.Error(t, c.Unmarshal(nil, new(string)))
}
