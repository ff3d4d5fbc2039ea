package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Country is the metadata kept for one country, keyed by its ISO 3166-1
// alpha-2 code.  A Country is never modified once loaded.
type Country struct {
	ISO2          string   `yaml:"iso2"`
	ISO3          string   `yaml:"iso3"`
	ISONum        uint32   `yaml:"iso_num"`
	Name          string   `yaml:"name"`
	DisplayName   string   `yaml:"display_name"`
	Capital       string   `yaml:"capital"`
	Region        string   `yaml:"region"`
	ContinentCode string   `yaml:"continent_code"`
	CurrencyCode  string   `yaml:"currency_code"`
	CurrencyName  string   `yaml:"currency_name"`
	TLD           string   `yaml:"tld"`
	GeonameID     uint32   `yaml:"geoname_id"`
	DialCodes     []string `yaml:"dial_codes"`
	LanguageCodes []string `yaml:"language_codes"`
}

// Countries maps ISO2 codes to country metadata.
type Countries map[string]*Country

// LoadCountries reads a YAML (or JSON) list of countries from path.
func LoadCountries(path string) (Countries, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read countries file: %w", err)
	}

	return ParseCountries(raw)
}

// ParseCountries decodes a list of countries and indexes it by ISO2 code.
// Every entry must have a two-letter code and codes must be unique.
func ParseCountries(raw []byte) (Countries, error) {
	var list []*Country
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse countries: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("countries list is empty")
	}

	countries := make(Countries, len(list))
	for i, c := range list {
		if c == nil {
			return nil, fmt.Errorf("country at index %d is empty", i)
		}
		if len(c.ISO2) != 2 {
			return nil, fmt.Errorf("country at index %d has invalid iso2 code %q", i, c.ISO2)
		}
		if _, exists := countries[c.ISO2]; exists {
			return nil, fmt.Errorf("duplicate country %s", c.ISO2)
		}
		countries[c.ISO2] = c
	}

	return countries, nil
}
