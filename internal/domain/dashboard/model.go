package dashboard

import (
	"time"

	"github.com/yanqian/weather-dashboard/internal/domain/weather"
)

// CityWeather pairs a favorite with its latest conditions. Current is nil
// when the refresh for that city failed.
type CityWeather struct {
	City    string                     `json:"city"`
	Current *weather.CurrentConditions `json:"current,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// Snapshot is one refresh of every favorite of a client.
type Snapshot struct {
	Units       weather.Units `json:"units"`
	Favorites   []string      `json:"favorites"`
	Cities      []CityWeather `json:"cities"`
	RefreshedAt time.Time     `json:"refreshedAt"`
}

// SelectRequest is the search result picked by the user.
type SelectRequest struct {
	Candidate weather.LocationCandidate `json:"candidate"`
	Units     string                    `json:"units"`
}

// SelectResult describes the outcome of selecting a search result.
type SelectResult struct {
	Name      string                    `json:"name"`
	Current   weather.CurrentConditions `json:"current"`
	Favorites []string                  `json:"favorites"`
	Added     bool                      `json:"added"`
}

// Config wires runtime knobs for the dashboard domain.
type Config struct {
	PollInterval time.Duration
	MaxParallel  int
}
