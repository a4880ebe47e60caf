package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-dashboard/internal/cli/settings"
	"github.com/yanqian/weather-dashboard/internal/domain/dashboard"
	"github.com/yanqian/weather-dashboard/internal/domain/forecast"
	"github.com/yanqian/weather-dashboard/internal/domain/weather"
	"github.com/yanqian/weather-dashboard/pkg/clientid"
)

type fakeAPI struct {
	mu        sync.Mutex
	favorites []string
	clientIDs []string
	dashboard int
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/weather/geocode", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, []weather.LocationCandidate{
			{Name: "Springfield", State: "Illinois", Country: "US", Lat: 39.7817, Lon: -89.6501},
			{Name: "Springfield", State: "Missouri", Country: "US", Lat: 37.2153, Lon: -93.2982},
		})
	})
	mux.HandleFunc("/api/v1/weather/forecast", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, weather.ForecastResponse{
			Forecast: weather.Forecast{City: "London", Country: "GB", Points: forecastPoints()},
			Units:    weather.UnitsMetric,
		})
	})
	mux.HandleFunc("/api/v1/dashboard/select", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var req dashboard.SelectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		name := req.Candidate.DisplayName()
		f.mu.Lock()
		f.favorites = append(f.favorites, name)
		list := append([]string(nil), f.favorites...)
		f.mu.Unlock()
		writeJSON(w, dashboard.SelectResult{
			Name:      name,
			Current:   weather.CurrentConditions{Temperature: 24.4, Units: weather.UnitsMetric, Description: "clear sky"},
			Favorites: list,
			Added:     true,
		})
	})
	mux.HandleFunc("/api/v1/favorites", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.Method == http.MethodPost {
			var body struct {
				City string `json:"city"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.favorites = append(f.favorites, body.City)
		}
		writeJSON(w, append([]string{}, f.favorites...))
	})
	mux.HandleFunc("/api/v1/dashboard", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		f.dashboard++
		f.mu.Unlock()
		writeJSON(w, dashboard.Snapshot{
			Units:     weather.UnitsMetric,
			Favorites: []string{"Oslo", "Atlantis"},
			Cities: []dashboard.CityWeather{
				{City: "Oslo", Current: &weather.CurrentConditions{Temperature: -2.6, Description: "light snow", Humidity: 80}},
				{City: "Atlantis", Error: "location_not_found"},
			},
			RefreshedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		})
	})
	return mux
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clientIDs = append(f.clientIDs, r.Header.Get(clientid.Header))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func forecastPoints() []forecast.Point {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]forecast.Point, 0, 16)
	for i := 0; i < 16; i++ {
		ts := base.Add(time.Duration(i) * 3 * time.Hour)
		temp := float64(i)
		points = append(points, forecast.Point{
			Timestamp:            ts.Unix(),
			Temperature:          forecast.Float(temp),
			TemperatureMin:       forecast.Float(temp - 1),
			TemperatureMax:       forecast.Float(temp + 1),
			ConditionIcon:        "01d",
			ConditionDescription: "sky at " + ts.Format("15:04") + "Z",
			DateKey:              ts.Format(forecast.DateKeyLayout),
		})
	}
	return points
}

func runCLI(t *testing.T, ctx context.Context, configPath string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", configPath, "--no-color"}, args...))
	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func newTestEnv(t *testing.T, timezone ...string) (*fakeAPI, string) {
	t.Helper()
	api := &fakeAPI{}
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	store := settings.NewStore(path)
	current, err := store.Load()
	require.NoError(t, err)
	current.BaseURL = server.URL
	current.Timezone = "UTC"
	if len(timezone) > 0 {
		current.Timezone = timezone[0]
	}
	require.NoError(t, store.Save(current))
	return api, path
}

func TestSearchListsCandidates(t *testing.T) {
	api, path := newTestEnv(t)

	out, _, err := runCLI(t, context.Background(), path, "search", "springfield")
	require.NoError(t, err)
	require.Contains(t, out, "Springfield, Illinois, US")
	require.Contains(t, out, "Springfield, Missouri, US")

	// the first run persists a generated client id that every request carries
	saved, err := settings.NewStore(path).Load()
	require.NoError(t, err)
	require.Len(t, saved.ClientID, 48)
	require.Equal(t, []string{saved.ClientID}, api.clientIDs)
}

func TestSearchSelectAddsFavorite(t *testing.T) {
	api, path := newTestEnv(t)

	out, _, err := runCLI(t, context.Background(), path, "search", "springfield", "--select", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Springfield, Missouri, US")
	require.Contains(t, out, "24°C")
	require.Contains(t, out, "[OK] added Springfield, Missouri, US to favorites")
	require.Equal(t, []string{"Springfield, Missouri, US"}, api.favorites)

	_, _, err = runCLI(t, context.Background(), path, "search", "springfield", "--select", "9")
	require.ErrorContains(t, err, "--select must be between 1 and 2")
}

func TestForecastAggregatesLocally(t *testing.T) {
	_, path := newTestEnv(t)

	out, _, err := runCLI(t, context.Background(), path, "forecast", "London", "--hours", "3")
	require.NoError(t, err)
	require.Contains(t, out, "London, GB")
	require.Contains(t, out, "00:00")
	require.Contains(t, out, "06:00")
	require.NotContains(t, out, "09:00")
	require.Contains(t, out, "Mon, Jan 1")
	require.Contains(t, out, "Tue, Jan 2")
	require.Contains(t, out, "sky at 12:00Z")
}

func TestForecastDisplayZoneKeepsUTCMidday(t *testing.T) {
	_, path := newTestEnv(t, "Europe/Berlin")

	out, _, err := runCLI(t, context.Background(), path, "forecast", "London", "--hours", "2")
	require.NoError(t, err)
	// hourly labels follow the configured zone
	require.Contains(t, out, "01:00")
	require.Contains(t, out, "04:00")
	// days still pick the 12:00 UTC entry, as the server does
	require.Contains(t, out, "sky at 12:00Z")
	require.NotContains(t, out, "sky at 15:00Z")
	require.NotContains(t, out, "sky at 09:00Z")
}

func TestForecastRejectsHalfCoordinates(t *testing.T) {
	_, path := newTestEnv(t)

	_, _, err := runCLI(t, context.Background(), path, "forecast", "--lat", "1")
	require.ErrorContains(t, err, "--lat and --lon")
}

func TestFavoritesAddAndList(t *testing.T) {
	_, path := newTestEnv(t)

	out, _, err := runCLI(t, context.Background(), path, "favorites", "add", "Paris,", "FR")
	require.NoError(t, err)
	require.Contains(t, out, "[OK] saved Paris, FR")

	out, _, err = runCLI(t, context.Background(), path, "favorites")
	require.NoError(t, err)
	require.Contains(t, out, "Paris, FR")
}

func TestDashboardMarksFailingCities(t *testing.T) {
	_, path := newTestEnv(t)

	out, _, err := runCLI(t, context.Background(), path, "dashboard")
	require.NoError(t, err)
	require.Contains(t, out, "Oslo")
	require.Contains(t, out, "-3°C")
	require.Contains(t, out, "location_not_found")
}

func TestDashboardWatchStopsOnCancel(t *testing.T) {
	api, path := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := runCLI(t, ctx, path, "dashboard", "--watch", "--interval", "1s")
		done <- err
	}()

	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.dashboard >= 2
	}, 5*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestUnitsPersist(t *testing.T) {
	_, path := newTestEnv(t)

	out, _, err := runCLI(t, context.Background(), path, "units", "imperial")
	require.NoError(t, err)
	require.Contains(t, out, "units set to imperial")

	out, _, err = runCLI(t, context.Background(), path, "units")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "imperial (°F)"))

	_, _, err = runCLI(t, context.Background(), path, "units", "kelvin")
	require.Error(t, err)
}
