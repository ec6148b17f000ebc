package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-station-grabber/internal/weather"
)

const stationPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>臺北</title></head>
<body>
<table class="table">
<tbody id="obstime">
<tr>
  <th scope="row" headers="time">11/02 11:20</th>
  <td headers="temp"><span class="tem-C is-active">27.5</span><span class="tem-F is-hidden">81.5</span></td>
  <td headers="weather"><img src="sun.svg" alt="晴"></td>
  <td headers="hum">73</td>
  <td headers="rain">%s</td>
</tr>
<tr>
  <th scope="row" headers="time">11/02 11:10</th>
  <td headers="temp"><span class="tem-C is-active">27.1</span></td>
  <td headers="hum">75</td>
  <td headers="rain">0.5</td>
</tr>
</tbody>
</table>
</body></html>`

func testHTTPConfig() HTTPClientConfig {
	return DefaultHTTPConfig(&http.Client{Timeout: 2 * time.Second}, 0)
}

func TestStationPageURL(t *testing.T) {
	tmpl := "https://www.cwa.gov.tw/V8/C/W/Observe/MOD/24hr/{id}.html"

	assert.Equal(t, "https://www.cwa.gov.tw/V8/C/W/Observe/MOD/24hr/46692.html", StationPageURL(tmpl, "46692"))
	assert.Equal(t, "https://example.com/a%2Fb.html", StationPageURL("https://example.com/{id}.html", "a/b"))
	assert.Equal(t, "https://example.com/static.html", StationPageURL("https://example.com/static.html", "46692"))
}

func TestParseStationPage(t *testing.T) {
	page := strings.Replace(stationPage, "%s", "0.0", 1)

	rec, err := parseStationPage(strings.NewReader(page))
	require.NoError(t, err)

	require.NotNil(t, rec.ObservedAt)
	assert.Equal(t, "11/02 11:20", *rec.ObservedAt)
	require.NotNil(t, rec.TemperatureC)
	assert.Equal(t, 27.5, *rec.TemperatureC)
	require.NotNil(t, rec.HumidityFraction)
	assert.InDelta(t, 0.73, *rec.HumidityFraction, 1e-9)
	require.NotNil(t, rec.RainfallMm)
	assert.Equal(t, 0.0, *rec.RainfallMm)
}

func TestParseStationPageMalformedRainfall(t *testing.T) {
	page := strings.Replace(stationPage, "%s", "-", 1)

	rec, err := parseStationPage(strings.NewReader(page))
	require.NoError(t, err)

	assert.Nil(t, rec.RainfallMm)
	require.NotNil(t, rec.TemperatureC)
	assert.Equal(t, 27.5, *rec.TemperatureC)
	require.NotNil(t, rec.HumidityFraction)
	assert.InDelta(t, 0.73, *rec.HumidityFraction, 1e-9)
	require.NotNil(t, rec.ObservedAt)
}

func TestParseStationPageMissingAnchors(t *testing.T) {
	rec, err := parseStationPage(strings.NewReader(`<html><body><p>維護中</p></body></html>`))
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())

	rec, err = parseStationPage(strings.NewReader(`<td headers="hum">88</td>`))
	require.NoError(t, err)
	assert.Nil(t, rec.TemperatureC)
	require.NotNil(t, rec.HumidityFraction)
	assert.InDelta(t, 0.88, *rec.HumidityFraction, 1e-9)
}

func TestParseStationPageUnclosedCells(t *testing.T) {
	page := `<table><tr><th headers="time">11/02 11:20<td headers="temp"><span class="tem-C">27.5</span><td headers="hum">73<td headers="rain">0.0</table>`

	rec, err := parseStationPage(strings.NewReader(page))
	require.NoError(t, err)

	require.NotNil(t, rec.ObservedAt)
	assert.Equal(t, "11/02 11:20", *rec.ObservedAt)
	require.NotNil(t, rec.TemperatureC)
	assert.Equal(t, 27.5, *rec.TemperatureC)
	require.NotNil(t, rec.HumidityFraction)
	assert.InDelta(t, 0.73, *rec.HumidityFraction, 1e-9)
	require.NotNil(t, rec.RainfallMm)
	assert.Equal(t, 0.0, *rec.RainfallMm)
}

func TestParseStationPageHumidityOutOfRange(t *testing.T) {
	for _, hum := range []string{"730", "-5"} {
		rec, err := parseStationPage(strings.NewReader(`<td headers="hum">` + hum + `</td><td headers="rain">1.5</td>`))
		require.NoError(t, err)
		assert.Nil(t, rec.HumidityFraction, hum)
		require.NotNil(t, rec.RainfallMm)
		assert.Equal(t, 1.5, *rec.RainfallMm)
	}
}

func TestWebProviderFetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(strings.Replace(stationPage, "%s", "1.5", 1)))
	}))
	defer srv.Close()

	p := NewWebProvider(testHTTPConfig(), srv.URL+"/catalog.json", srv.URL+"/MOD/24hr/{id}.html")
	rec, err := p.Fetch(context.Background(), weather.Station{ID: "46692", Source: weather.SourceWeb})
	require.NoError(t, err)

	assert.Equal(t, "/MOD/24hr/46692.html", gotPath)
	require.NotNil(t, rec.RainfallMm)
	assert.Equal(t, 1.5, *rec.RainfallMm)
}

func TestWebProviderFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := NewWebProvider(testHTTPConfig(), srv.URL, srv.URL+"/{id}.html")
	rec, err := p.Fetch(context.Background(), weather.Station{ID: "00000"})

	assert.ErrorIs(t, err, errUnexpected)
	assert.True(t, rec.IsEmpty())
}

func TestWebProviderCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"ID":"46692","STname":"臺北","Lat":"25.0377","Lon":"121.5149"},
			{"ID":"46757","STname":"新竹","Lat":24.8279,"Lon":121.0142},
			{"ID":"46999","STname":"壞掉","Lat":"N/A","Lon":"121.0"},
			{"STname":"無編號","Lat":24.0,"Lon":121.0}
		]`))
	}))
	defer srv.Close()

	p := NewWebProvider(testHTTPConfig(), srv.URL, srv.URL+"/{id}.html")
	stations, err := p.Catalog(context.Background())
	require.NoError(t, err)

	require.Len(t, stations, 2)
	assert.Equal(t, weather.Station{
		ID:         "46692",
		Name:       "臺北",
		Coordinate: weather.Coordinate{Lat: 25.0377, Lon: 121.5149},
		Source:     weather.SourceWeb,
	}, stations[0])
	assert.Equal(t, "46757", stations[1].ID)
	assert.Equal(t, 24.8279, stations[1].Coordinate.Lat)
}

func TestWebProviderCatalogFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{name: "malformed payload", handler: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`var STMap = {`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p := NewWebProvider(testHTTPConfig(), srv.URL, srv.URL+"/{id}.html")
			stations, err := p.Catalog(context.Background())

			assert.Error(t, err)
			assert.Empty(t, stations)
		})
	}
}
