package domain

// MapStatus is the load state of the mapping script.
type MapStatus string

const (
	MapStatusIdle    MapStatus = "idle"
	MapStatusLoading MapStatus = "loading"
	MapStatusReady   MapStatus = "ready"
	MapStatusError   MapStatus = "error"
	MapStatusNoKey   MapStatus = "no-key"
)

// Terminal reports whether no further transition can happen.
func (s MapStatus) Terminal() bool {
	return s == MapStatusReady || s == MapStatusError || s == MapStatusNoKey
}

// Degraded reports whether the map is unavailable and a fallback message must be shown.
func (s MapStatus) Degraded() bool {
	return s == MapStatusError || s == MapStatusNoKey
}

// Bounds is the smallest rectangle enclosing a set of points.
// The zero value is empty.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
	count int
}

// Extend grows the rectangle to include c.
func (b *Bounds) Extend(c Coordinates) {
	if b.count == 0 {
		b.South, b.North = c.Lat, c.Lat
		b.West, b.East = c.Lng, c.Lng
		b.count = 1

		return
	}

	b.South = min(b.South, c.Lat)
	b.North = max(b.North, c.Lat)
	b.West = min(b.West, c.Lng)
	b.East = max(b.East, c.Lng)
	b.count++
}

// IsEmpty reports whether no point has been added.
func (b *Bounds) IsEmpty() bool {
	return b.count == 0
}

// Center returns the midpoint of the rectangle.
func (b *Bounds) Center() Coordinates {
	return Coordinates{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// Overlay is the summary popup anchored to a marker.
type Overlay struct {
	PersonID    string   `json:"person_id"`
	Name        string   `json:"name"`
	Place       string   `json:"place"`
	Categories  []string `json:"categories"`
	ActionLabel string   `json:"action_label"`
}
