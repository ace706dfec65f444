package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"unalone/internal/domain"
)

// AuthAPI implements domain.AuthAPI against the backend /auth routes.
type AuthAPI struct {
	client *Client
}

// NewAuthAPI returns the authentication surface of the given client.
func NewAuthAPI(client *Client) domain.AuthAPI {
	return &AuthAPI{client: client}
}

type wireAuthResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	User    wireUser `json:"user"`
	Message string   `json:"message"`
}

func (a *AuthAPI) Login(ctx context.Context, identifier, password string) (domain.AuthSession, error) {
	body := map[string]string{"identifier": identifier, "password": password}
	raw, err := a.client.do(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("login: %w", err)
	}
	return decodeAuthResponse(raw)
}

func (a *AuthAPI) Register(ctx context.Context, reg domain.Registration) (domain.AuthSession, error) {
	body := map[string]string{
		"username": reg.Username,
		"email":    reg.Email,
		"password": reg.Password,
	}
	raw, err := a.client.do(ctx, http.MethodPost, "/auth/register", nil, body)
	if err != nil {
		return domain.AuthSession{}, fmt.Errorf("register: %w", err)
	}
	return decodeAuthResponse(raw)
}

func decodeAuthResponse(raw []byte) (domain.AuthSession, error) {
	var resp wireAuthResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.AuthSession{}, fmt.Errorf("decode auth response: %w", err)
	}
	if resp.Token == "" {
		return domain.AuthSession{}, fmt.Errorf("auth response missing token")
	}
	return domain.AuthSession{Token: resp.Token, User: resp.User.toDomain()}, nil
}

func (a *AuthAPI) VerifyToken(ctx context.Context) (domain.User, error) {
	raw, err := a.client.do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("verify token: %w", err)
	}
	return decodeUserBody(raw)
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	payload := map[string]any{}
	if update.Email != nil && *update.Email != "" {
		payload["email"] = *update.Email
	}
	profile := map[string]any{}
	if update.FirstName != nil && *update.FirstName != "" {
		profile["firstName"] = *update.FirstName
	}
	if update.LastName != nil && *update.LastName != "" {
		profile["lastName"] = *update.LastName
	}
	if update.Bio != nil && *update.Bio != "" {
		profile["bio"] = *update.Bio
	}
	if update.Age != nil {
		profile["age"] = *update.Age
	}
	if len(profile) > 0 {
		payload["profile"] = profile
	}

	raw, err := a.client.do(ctx, http.MethodPut, "/auth/profile", nil, payload)
	if err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return decodeUserBody(raw)
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	if _, err := a.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// decodeUserBody unwraps {"user": …} or a bare user object.
func decodeUserBody(raw []byte) (domain.User, error) {
	var env struct {
		User *wireUser `json:"user"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.User != nil {
		return env.User.toDomain(), nil
	}
	var w wireUser
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.User{}, fmt.Errorf("decode user: %w", err)
	}
	return w.toDomain(), nil
}
