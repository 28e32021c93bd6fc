package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matst80/store-locator/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const swedishCSV = "\xEF\xBB\xBFPostnummer,Ort,KnNamn,KnKod,LnNamn,Latitude,Longitude,Google-maps\n" +
	"111 20,Stockholm,Stockholm,0180,Stockholms län,59.3326,18.0649,link\n" +
	"\n" +
	"411 01,Göteborg,Göteborg,1480,Västra Götalands län,57.7065,11.967,link\n" +
	"999 99,Nowhere,,,,not-a-number,18.0,link\n" +
	",Missing,,,,59.0,18.0,link\n"

const norwegianCSV = "Postnummer;Poststed;FylkeKode;Fylke;KommuneKode;Kommune;PostnummerKategoriKode;PostnummerKategori;Latitude;Longitude\n" +
	"1461;LØRENSKOG;32;Akershus;3222;Lørenskog;G;Gateadresser;59,93517;10,93726\n"

const canadianCSV = "POSTAL_CODE,CITY,PROVINCE_ABBR,TIME_ZONE,LATITUDE,LONGITUDE\n" +
	"L5N 8G6,MISSISSAUGA,ON,5,43.5890,-79.6441\n" +
	"L5B 4M6,MISSISSAUGA,ON,5,43.5845,-79.6503\n"

func collect(t *testing.T, csv string, cfg PostalCodeCSVConfig) []PostalCodeLocation {
	t.Helper()
	var got []PostalCodeLocation
	err := StreamPostalCodeLocations(context.Background(), strings.NewReader(csv), cfg, func(p PostalCodeLocation) error {
		got = append(got, p)
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestStreamSwedish(t *testing.T) {
	got := collect(t, swedishCSV, SwedenPostalCodeCSVConfig())
	require.Len(t, got, 2)
	assert.Equal(t, "11120", got[0].PostalCode)
	assert.Equal(t, "Stockholm", got[0].City)
	assert.Equal(t, geo.Location{Latitude: 59.3326, Longitude: 18.0649}, got[0].Location)
	assert.Equal(t, "Göteborg", got[1].City)
}

func TestStreamNorwegianDecimalComma(t *testing.T) {
	got := collect(t, norwegianCSV, PostalCodeCSVConfigFor("no"))
	require.Len(t, got, 1)
	assert.Equal(t, "1461", got[0].PostalCode)
	assert.Equal(t, 59.93517, got[0].Location.Latitude)
	assert.Equal(t, 10.93726, got[0].Location.Longitude)
}

func TestStreamMissingColumns(t *testing.T) {
	err := StreamPostalCodeLocations(context.Background(), strings.NewReader("a,b,c\n1,2,3\n"), SwedenPostalCodeCSVConfig(), func(PostalCodeLocation) error { return nil })
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestStreamEmptyInput(t *testing.T) {
	err := StreamPostalCodeLocations(context.Background(), strings.NewReader(""), SwedenPostalCodeCSVConfig(), func(PostalCodeLocation) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestStreamStopsOnEmitError(t *testing.T) {
	stop := errors.New("enough")
	calls := 0
	err := StreamPostalCodeLocations(context.Background(), strings.NewReader(swedishCSV), SwedenPostalCodeCSVConfig(), func(PostalCodeLocation) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestStreamCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := StreamPostalCodeLocations(ctx, strings.NewReader(swedishCSV), SwedenPostalCodeCSVConfig(), func(PostalCodeLocation) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostalCodeLocationChannel(t *testing.T) {
	ch, errCh := PostalCodeLocationChannel(context.Background(), strings.NewReader(swedishCSV), SwedenPostalCodeCSVConfig())
	count := 0
	for range ch {
		count++
	}
	assert.NoError(t, <-errCh)
	assert.Equal(t, 2, count)
}

func TestPostalCodeIndexPrefixFallback(t *testing.T) {
	idx, err := LoadPostalCodeIndex(context.Background(), strings.NewReader(canadianCSV), CanadaPostalCodeCSVConfig(), 3)
	require.NoError(t, err)

	loc, ok := idx.Lookup("l5n 8g6")
	require.True(t, ok)
	assert.Equal(t, 43.5890, loc.Latitude)

	loc, ok = idx.Lookup("L5N 1A1")
	require.True(t, ok)
	assert.Equal(t, 43.5890, loc.Latitude, "first code in the area wins")

	_, ok = idx.Lookup("M5V 2T6")
	assert.False(t, ok)
	_, ok = idx.Lookup("")
	assert.False(t, ok)
}

func TestPostalCodeResolver(t *testing.T) {
	idx := NewPostalCodeIndex(0)
	idx.Add("111 20", geo.Location{Latitude: 59.3326, Longitude: 18.0649})
	res := &PostalCodeResolver{Index: idx}

	r := httptest.NewRequest(http.MethodGet, "/api/location?zip=11120", nil)
	loc, err := res.Resolve(context.Background(), r)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, 59.3326, loc.Latitude)

	r = httptest.NewRequest(http.MethodGet, "/api/location", nil)
	r.AddCookie(&http.Cookie{Name: LocationCookieName, Value: "bad|bad|11120"})
	loc, err = res.Resolve(context.Background(), r)
	require.NoError(t, err)
	require.NotNil(t, loc)

	r = httptest.NewRequest(http.MethodGet, "/api/location?zip=00000", nil)
	loc, err = res.Resolve(context.Background(), r)
	assert.NoError(t, err)
	assert.Nil(t, loc)
}

func TestPostalCodeCSVConfigFor(t *testing.T) {
	assert.Equal(t, SwedenPostalCodeCSVConfig(), PostalCodeCSVConfigFor("SE"))
	assert.Equal(t, NorwayPostalCodeCSVConfig(), PostalCodeCSVConfigFor("no"))
	assert.Equal(t, CanadaPostalCodeCSVConfig(), PostalCodeCSVConfigFor("ca"))
	assert.Equal(t, CanadaPostalCodeCSVConfig(), PostalCodeCSVConfigFor("xx"))
}

func TestNormalizePostalCode(t *testing.T) {
	assert.Equal(t, "L5N8G6", NormalizePostalCode(" l5n  8g6 "))
	assert.Equal(t, "11120", NormalizePostalCode("111 20"))
}
