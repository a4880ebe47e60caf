package forecast

import "time"

// Options tunes Aggregate. Zero values fall back to the package defaults.
type Options struct {
	HourlyLimit int
	DailyLimit  int
	// Location renders hourly labels.
	Location *time.Location
	// DateLocation is the clock the points' DateKeys are expressed in; the noon
	// representative is looked up on the same clock. Nil means UTC.
	DateLocation *time.Location
}

// Aggregate derives both the hourly and the daily projection of points.
func Aggregate(points []Point, opts Options) (Projection, error) {
	hourly, err := DeriveHourly(points, opts.HourlyLimit, opts.Location)
	if err != nil {
		return Projection{}, err
	}
	daily, err := DeriveDaily(points, opts.DailyLimit, opts.DateLocation)
	if err != nil {
		return Projection{}, err
	}
	return Projection{Hourly: hourly, Daily: daily}, nil
}

// DeriveHourly returns the first limit points as chart entries. Points are
// trusted to be chronological and temperatures are copied as-is.
func DeriveHourly(points []Point, limit int, loc *time.Location) ([]HourlyPoint, error) {
	if limit <= 0 {
		limit = DefaultHourlyLimit
	}
	loc = resolveLocation(loc)

	n := min(limit, len(points))
	out := make([]HourlyPoint, 0, n)
	for i := 0; i < n; i++ {
		pt := points[i]
		if pt.Temperature == nil {
			return nil, &MissingFieldError{Index: i, Field: "temperature"}
		}
		out = append(out, HourlyPoint{
			Label:       time.Unix(pt.Timestamp, 0).In(loc).Format(hourLabelLayout),
			Temperature: *pt.Temperature,
		})
	}
	return out, nil
}

// member keeps the original position of a point for error reporting.
type member struct {
	index int
	point Point
}

type dateGroup struct {
	key     string
	members []member
}

// DeriveDaily groups points by DateKey in first-seen order and summarizes the
// first limit groups.
func DeriveDaily(points []Point, limit int, loc *time.Location) ([]DailySummary, error) {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	loc = resolveLocation(loc)

	groups, err := groupByDate(points)
	if err != nil {
		return nil, err
	}
	if len(groups) > limit {
		groups = groups[:limit]
	}

	out := make([]DailySummary, 0, len(groups))
	for _, g := range groups {
		summary, err := summarize(g, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

// groupByDate relies on a slice for ordering; the map only indexes into it.
func groupByDate(points []Point) ([]dateGroup, error) {
	groups := make([]dateGroup, 0)
	index := make(map[string]int)
	for i, pt := range points {
		if pt.DateKey == "" {
			return nil, &MissingFieldError{Index: i, Field: "dateKey"}
		}
		pos, ok := index[pt.DateKey]
		if !ok {
			pos = len(groups)
			index[pt.DateKey] = pos
			groups = append(groups, dateGroup{key: pt.DateKey})
		}
		groups[pos].members = append(groups[pos].members, member{index: i, point: pt})
	}
	return groups, nil
}

func summarize(g dateGroup, loc *time.Location) (DailySummary, error) {
	var lo, hi float64
	for i, m := range g.members {
		if m.point.TemperatureMin == nil {
			return DailySummary{}, &MissingFieldError{Index: m.index, Field: "temperatureMin"}
		}
		if m.point.TemperatureMax == nil {
			return DailySummary{}, &MissingFieldError{Index: m.index, Field: "temperatureMax"}
		}
		if i == 0 || *m.point.TemperatureMin < lo {
			lo = *m.point.TemperatureMin
		}
		if i == 0 || *m.point.TemperatureMax > hi {
			hi = *m.point.TemperatureMax
		}
	}

	rep := representative(g.members, loc)
	return DailySummary{
		Label:          dayLabel(g.key),
		DateKey:        g.key,
		TemperatureMin: lo,
		TemperatureMax: hi,
		Icon:           rep.ConditionIcon,
		Description:    rep.ConditionDescription,
	}, nil
}

// representative prefers the 12:00:00 entry and otherwise falls back to the
// middle member. Groups are never empty.
func representative(members []member, loc *time.Location) Point {
	for _, m := range members {
		if isNoon(m.point.Timestamp, loc) {
			return m.point
		}
	}
	return members[len(members)/2].point
}

func isNoon(ts int64, loc *time.Location) bool {
	h, m, s := time.Unix(ts, 0).In(loc).Clock()
	return h == 12 && m == 0 && s == 0
}

func dayLabel(key string) string {
	day, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return key
	}
	return day.Format(dayLabelLayout)
}

func resolveLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
