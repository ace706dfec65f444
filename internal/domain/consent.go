package domain

import "context"

// ConsentPreferences records the user's cookie/tracking consent choices.
// Necessary is fixed true: the client cannot function without it.
type ConsentPreferences struct {
	Necessary  bool   `json:"necessary"`
	Functional bool   `json:"functional"`
	Analytics  bool   `json:"analytics"`
	Marketing  bool   `json:"marketing"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// Normalized returns a copy with the fixed-true invariant on Necessary
// enforced.
func (p ConsentPreferences) Normalized() ConsentPreferences {
	p.Necessary = true
	return p
}

// AcceptAllConsent returns preferences with every category enabled.
func AcceptAllConsent() ConsentPreferences {
	return ConsentPreferences{Necessary: true, Functional: true, Analytics: true, Marketing: true}
}

// NecessaryOnlyConsent returns preferences with only the required category.
func NecessaryOnlyConsent() ConsentPreferences {
	return ConsentPreferences{Necessary: true}
}

// PrivacyAPI is the remote RGPD surface: consent mirroring, data export,
// and irreversible account deletion.
type PrivacyAPI interface {
	SaveConsent(ctx context.Context, prefs ConsentPreferences) error
	FetchConsent(ctx context.Context) (ConsentPreferences, error)
	// ExportData returns the user's data as an arbitrary JSON blob.
	ExportData(ctx context.Context) ([]byte, error)
	// DeleteAccount requires the account password as confirmation.
	DeleteAccount(ctx context.Context, password string) error
}

// Place is a geocoding result.
type Place struct {
	DisplayName string
	Lat         float64
	Lng         float64
	PlaceID     string
}

// GeocodingAPI resolves place names to coordinates and back.
type GeocodingAPI interface {
	SearchPlaces(ctx context.Context, query string) ([]Place, error)
	ReverseGeocode(ctx context.Context, pos Position) (string, error)
}
