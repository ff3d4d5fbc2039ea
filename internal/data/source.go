package data

import (
	"context"
	"log/slog"
)

// FileSource loads the dataset sub-resources from local files.  Each method
// builds a fresh value on every call.
type FileSource struct {
	logger *slog.Logger

	countriesPath string
	countryDBPath string
	cityDBPath    string
	asnDBPath     string
}

// FileSourceConfig holds the file locations used by a FileSource.
type FileSourceConfig struct {
	CountriesPath string
	CountryDBPath string
	CityDBPath    string
	ASNDBPath     string
}

// NewFileSource creates a new FileSource.
func NewFileSource(logger *slog.Logger, cfg FileSourceConfig) *FileSource {
	return &FileSource{
		logger:        logger,
		countriesPath: cfg.CountriesPath,
		countryDBPath: cfg.CountryDBPath,
		cityDBPath:    cfg.CityDBPath,
		asnDBPath:     cfg.ASNDBPath,
	}
}

// Paths returns every file the source reads from.
func (s *FileSource) Paths() []string {
	return []string{s.countriesPath, s.countryDBPath, s.cityDBPath, s.asnDBPath}
}

// Countries loads the country metadata table.
func (s *FileSource) Countries(ctx context.Context) (Countries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	countries, err := LoadCountries(s.countriesPath)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "countries loaded", "path", s.countriesPath, "count", len(countries))
	return countries, nil
}

// CountryIndex opens the country database.
func (s *FileSource) CountryIndex(ctx context.Context) (CountryIndex, error) {
	r, err := s.open(ctx, s.countryDBPath, NewCountryReader)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CityIndex opens the city database.
func (s *FileSource) CityIndex(ctx context.Context) (CityIndex, error) {
	r, err := s.open(ctx, s.cityDBPath, NewCityReader)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ASNIndex opens the ASN database.
func (s *FileSource) ASNIndex(ctx context.Context) (ASNIndex, error) {
	r, err := s.open(ctx, s.asnDBPath, NewASNReader)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *FileSource) open(ctx context.Context, path string, openFn func(string) (*MmdbReader, error)) (*MmdbReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := openFn(path)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "MMDB loaded",
		"path", path,
		"database_type", r.DatabaseType(),
		"build_time", r.BuildTime(),
	)
	return r, nil
}
