package view

import (
	"math"
	"sort"
	"strings"

	"unalone/internal/domain"
)

// SortKey selects the ordering of the rendered event list.
type SortKey string

const (
	SortByDate       SortKey = "date"
	SortByDistance   SortKey = "distance"
	SortByPopularity SortKey = "popularity"
)

const earthRadiusKm = 6371

// Haversine returns the great-circle distance between two positions in
// kilometers.
func Haversine(a, b domain.Position) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// FilterSort derives the rendered sublist: a case-insensitive substring
// match of searchText against title, description, and place name, an exact
// type filter, and the requested ordering. Pure and deterministic; the
// input slice is never mutated.
func FilterSort(events []domain.Event, searchText, typeFilter string, key SortKey, userPos *domain.Position) []domain.Event {
	q := strings.ToLower(searchText)
	filtered := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if q != "" &&
			!strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.PlaceName), q) {
			continue
		}
		if typeFilter != "" && e.Type != typeFilter {
			continue
		}
		filtered = append(filtered, e)
	}

	switch key {
	case SortByDate:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].StartTime().Before(filtered[j].StartTime())
		})
	case SortByDistance:
		if userPos != nil {
			sort.SliceStable(filtered, func(i, j int) bool {
				di := Haversine(*userPos, domain.Position{Lat: filtered[i].Lat, Lng: filtered[i].Lng})
				dj := Haversine(*userPos, domain.Position{Lat: filtered[j].Lat, Lng: filtered[j].Lng})
				return di < dj
			})
		}
	case SortByPopularity:
		sort.SliceStable(filtered, func(i, j int) bool {
			return len(filtered[i].Attendees) > len(filtered[j].Attendees)
		})
	}
	return filtered
}
