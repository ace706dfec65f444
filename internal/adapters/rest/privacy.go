package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"unalone/internal/domain"
)

// PrivacyAPI implements domain.PrivacyAPI against the backend RGPD routes.
type PrivacyAPI struct {
	client *Client
}

// NewPrivacyAPI returns the RGPD surface of the given client.
func NewPrivacyAPI(client *Client) domain.PrivacyAPI {
	return &PrivacyAPI{client: client}
}

func (a *PrivacyAPI) SaveConsent(ctx context.Context, prefs domain.ConsentPreferences) error {
	if _, err := a.client.do(ctx, http.MethodPost, "/users/consent", nil, prefs.Normalized()); err != nil {
		return fmt.Errorf("save consent: %w", err)
	}
	return nil
}

func (a *PrivacyAPI) FetchConsent(ctx context.Context) (domain.ConsentPreferences, error) {
	raw, err := a.client.do(ctx, http.MethodGet, "/users/consent", nil, nil)
	if err != nil {
		return domain.ConsentPreferences{}, fmt.Errorf("fetch consent: %w", err)
	}
	var prefs domain.ConsentPreferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return domain.ConsentPreferences{}, fmt.Errorf("decode consent: %w", err)
	}
	return prefs.Normalized(), nil
}

func (a *PrivacyAPI) ExportData(ctx context.Context) ([]byte, error) {
	raw, err := a.client.do(ctx, http.MethodGet, "/users/export", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("export user data: %w", err)
	}
	return raw, nil
}

func (a *PrivacyAPI) DeleteAccount(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	if _, err := a.client.do(ctx, http.MethodDelete, "/users/me", nil, body); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
