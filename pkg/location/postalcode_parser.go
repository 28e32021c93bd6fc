package location

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matst80/store-locator/pkg/geo"
)

// Postal code CSV files are streamed row by row. Only the postal code, city,
// latitude and longitude columns are used, located by header name. Rows that
// fail to parse are skipped; the returned error is reserved for a bad header,
// read failures, cancellation or an emit error.

var (
	ErrMissingColumns = errors.New("missing required postal code columns")
	ErrEmptyInput     = errors.New("no postal code rows found")
)

type PostalCodeLocation struct {
	PostalCode string       `json:"postalCode"`
	City       string       `json:"city"`
	Location   geo.Location `json:"location"`
}

// PostalCodeCSVConfig names the header columns (case-insensitive) and the
// field delimiter of a source file.
type PostalCodeCSVConfig struct {
	HeaderPostalCode string
	HeaderCity       string
	HeaderLatitude   string
	HeaderLongitude  string
	Delimiter        rune
}

// Postnummer,Ort,KnNamn,KnKod,LnNamn,Latitude,Longitude,Google-maps
func SwedenPostalCodeCSVConfig() PostalCodeCSVConfig {
	return PostalCodeCSVConfig{
		HeaderPostalCode: "postnummer",
		HeaderCity:       "ort",
		HeaderLatitude:   "latitude",
		HeaderLongitude:  "longitude",
		Delimiter:        ',',
	}
}

// Postnummer;Poststed;FylkeKode;Fylke;KommuneKode;Kommune;PostnummerKategoriKode;PostnummerKategori;Latitude;Longitude
func NorwayPostalCodeCSVConfig() PostalCodeCSVConfig {
	return PostalCodeCSVConfig{
		HeaderPostalCode: "postnummer",
		HeaderCity:       "poststed",
		HeaderLatitude:   "latitude",
		HeaderLongitude:  "longitude",
		Delimiter:        ';',
	}
}

// POSTAL_CODE,CITY,PROVINCE_ABBR,TIME_ZONE,LATITUDE,LONGITUDE
func CanadaPostalCodeCSVConfig() PostalCodeCSVConfig {
	return PostalCodeCSVConfig{
		HeaderPostalCode: "postal_code",
		HeaderCity:       "city",
		HeaderLatitude:   "latitude",
		HeaderLongitude:  "longitude",
		Delimiter:        ',',
	}
}

// PostalCodeCSVConfigFor picks the layout for a country code, Canadian by default.
func PostalCodeCSVConfigFor(country string) PostalCodeCSVConfig {
	switch strings.ToLower(country) {
	case "no":
		return NorwayPostalCodeCSVConfig()
	case "se":
		return SwedenPostalCodeCSVConfig()
	default:
		return CanadaPostalCodeCSVConfig()
	}
}

// StreamPostalCodeLocations calls emit for every valid row of r. It stops
// early when ctx is canceled or emit fails.
func StreamPostalCodeLocations(ctx context.Context, r io.Reader, cfg PostalCodeCSVConfig, emit func(PostalCodeLocation) error) error {
	reader := csv.NewReader(NewNormalizedLineReader(r))
	reader.Comma = ','
	if cfg.Delimiter != 0 {
		reader.Comma = cfg.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyInput
		}
		return fmt.Errorf("read header: %w", err)
	}

	cols, err := mapPostalCodeHeader(header, cfg)
	if err != nil {
		return err
	}

	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row %d: %w", row, err)
		}
		if isBlank(record) {
			continue
		}

		loc, ok := extractPostalCodeLocation(record, cols)
		if !ok {
			continue
		}
		if err := emit(loc); err != nil {
			return err
		}
	}
}

// PostalCodeLocationChannel is the channel form of StreamPostalCodeLocations.
// The error channel receives exactly one value once out is closed.
func PostalCodeLocationChannel(ctx context.Context, r io.Reader, cfg PostalCodeCSVConfig) (<-chan PostalCodeLocation, <-chan error) {
	out := make(chan PostalCodeLocation)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(out)
		errCh <- StreamPostalCodeLocations(ctx, r, cfg, func(p PostalCodeLocation) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- p:
				return nil
			}
		})
	}()

	return out, errCh
}

type headerColumns struct {
	PostalCode int
	City       int
	Latitude   int
	Longitude  int
}

func mapPostalCodeHeader(header []string, cfg PostalCodeCSVConfig) (headerColumns, error) {
	idx := func(target string) int {
		target = strings.ToLower(strings.TrimSpace(target))
		for i, h := range header {
			if strings.ToLower(strings.TrimSpace(stripBOM(h))) == target {
				return i
			}
		}
		return -1
	}

	cols := headerColumns{
		PostalCode: idx(cfg.HeaderPostalCode),
		City:       idx(cfg.HeaderCity),
		Latitude:   idx(cfg.HeaderLatitude),
		Longitude:  idx(cfg.HeaderLongitude),
	}
	if cols.PostalCode < 0 || cols.City < 0 || cols.Latitude < 0 || cols.Longitude < 0 {
		return headerColumns{}, ErrMissingColumns
	}
	return cols, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func extractPostalCodeLocation(record []string, cols headerColumns) (PostalCodeLocation, bool) {
	get := func(i int) string {
		if i >= 0 && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	code := NormalizePostalCode(get(cols.PostalCode))
	city := get(cols.City)
	if code == "" || city == "" {
		return PostalCodeLocation{}, false
	}

	lat, err := geo.ParseCoordinate(get(cols.Latitude), -90, 90)
	if err != nil {
		return PostalCodeLocation{}, false
	}
	lng, err := geo.ParseCoordinate(get(cols.Longitude), -180, 180)
	if err != nil {
		return PostalCodeLocation{}, false
	}

	return PostalCodeLocation{
		PostalCode: code,
		City:       city,
		Location:   geo.Location{Latitude: lat, Longitude: lng},
	}, true
}

// NormalizePostalCode upper cases the code and drops all whitespace, so
// "l5n 8g6" and "L5N8G6" map to the same key.
func NormalizePostalCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

// NewNormalizedLineReader drops a leading UTF-8 BOM.
func NewNormalizedLineReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	b, err := br.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
