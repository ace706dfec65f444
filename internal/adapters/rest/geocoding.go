package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"unalone/internal/domain"
)

// GeocodingAPI implements domain.GeocodingAPI. Forward search goes through
// the backend's geocoding proxy; reverse geocoding calls Nominatim directly
// like the original client does.
type GeocodingAPI struct {
	client *Client
}

// NewGeocodingAPI returns the geocoding surface of the given client.
func NewGeocodingAPI(client *Client) domain.GeocodingAPI {
	return &GeocodingAPI{client: client}
}

type wirePlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	PlaceID     any    `json:"place_id"`
}

func (w wirePlace) toDomain() domain.Place {
	lat, _ := strconv.ParseFloat(w.Lat, 64)
	lng, _ := strconv.ParseFloat(w.Lon, 64)
	return domain.Place{
		DisplayName: w.DisplayName,
		Lat:         lat,
		Lng:         lng,
		PlaceID:     fmt.Sprint(w.PlaceID),
	}
}

func (a *GeocodingAPI) SearchPlaces(ctx context.Context, query string) ([]domain.Place, error) {
	q := url.Values{"q": {query}}
	raw, err := a.client.do(ctx, http.MethodGet, "/geocoding/search", q, nil)
	if err != nil {
		return nil, fmt.Errorf("search places: %w", err)
	}

	// {"data": […]} or a bare array.
	var env struct {
		Data []wirePlace `json:"data"`
	}
	_ = json.Unmarshal(raw, &env)
	wire := env.Data
	if wire == nil {
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, fmt.Errorf("decode places: %w", err)
		}
	}
	places := make([]domain.Place, 0, len(wire))
	for _, w := range wire {
		places = append(places, w.toDomain())
	}
	return places, nil
}

func (a *GeocodingAPI) ReverseGeocode(ctx context.Context, pos domain.Position) (string, error) {
	q := url.Values{
		"format": {"json"},
		"lat":    {strconv.FormatFloat(pos.Lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(pos.Lng, 'f', -1, 64)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.client.reverseGeocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create reverse geocode request: %w", err)
	}
	resp, err := a.client.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status: %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read reverse geocode response: %w", err)
	}
	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode reverse geocode response: %w", err)
	}
	if body.DisplayName == "" {
		return "", domain.ErrNotFound
	}
	return body.DisplayName, nil
}
