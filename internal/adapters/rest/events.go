package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"unalone/internal/domain"
)

// EventsAPI implements domain.EventAPI against the backend /events routes.
type EventsAPI struct {
	client *Client
}

// NewEventsAPI returns the events surface of the given client.
func NewEventsAPI(client *Client) domain.EventAPI {
	return &EventsAPI{client: client}
}

func (a *EventsAPI) List(ctx context.Context) ([]domain.Event, error) {
	raw, err := a.client.do(ctx, http.MethodGet, "/events", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return decodeEventListBody(raw), nil
}

func (a *EventsAPI) GetByID(ctx context.Context, id string) (domain.Event, error) {
	raw, err := a.client.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return decodeEventBody(raw), nil
}

func (a *EventsAPI) Create(ctx context.Context, draft domain.EventDraft) (domain.Event, error) {
	raw, err := a.client.do(ctx, http.MethodPost, "/events", nil, encodeEventDraft(draft))
	if err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	return decodeEventBody(raw), nil
}

func (a *EventsAPI) Update(ctx context.Context, id string, draft domain.EventDraft) (domain.Event, error) {
	raw, err := a.client.do(ctx, http.MethodPut, "/events/"+url.PathEscape(id), nil, encodeEventDraft(draft))
	if err != nil {
		return domain.Event{}, fmt.Errorf("update event: %w", err)
	}
	return decodeEventBody(raw), nil
}

func (a *EventsAPI) Delete(ctx context.Context, id string) error {
	if _, err := a.client.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (a *EventsAPI) Join(ctx context.Context, id string) (domain.Event, error) {
	raw, err := a.client.do(ctx, http.MethodPost, "/events/"+url.PathEscape(id)+"/join", nil, nil)
	if err != nil {
		return domain.Event{}, fmt.Errorf("join event: %w", err)
	}
	return decodeEventBody(raw), nil
}

func (a *EventsAPI) Leave(ctx context.Context, id string) (domain.Event, error) {
	raw, err := a.client.do(ctx, http.MethodPost, "/events/"+url.PathEscape(id)+"/leave", nil, nil)
	if err != nil {
		return domain.Event{}, fmt.Errorf("leave event: %w", err)
	}
	return decodeEventBody(raw), nil
}

func (a *EventsAPI) UpdateParticipantRole(ctx context.Context, eventID, userID string, role domain.AttendeeRole) (domain.Event, error) {
	path := "/events/" + url.PathEscape(eventID) + "/participants/" + url.PathEscape(userID) + "/role"
	raw, err := a.client.do(ctx, http.MethodPatch, path, nil, map[string]any{"role": role})
	if err != nil {
		return domain.Event{}, fmt.Errorf("update participant role: %w", err)
	}
	return decodeEventBody(raw), nil
}

func (a *EventsAPI) KickParticipant(ctx context.Context, eventID, userID string) (domain.Event, error) {
	path := "/events/" + url.PathEscape(eventID) + "/participants/" + url.PathEscape(userID)
	raw, err := a.client.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return domain.Event{}, fmt.Errorf("kick participant: %w", err)
	}
	return decodeEventBody(raw), nil
}

func (a *EventsAPI) SearchByLocation(ctx context.Context, pos domain.Position, radiusKm float64) ([]domain.Event, error) {
	if radiusKm <= 0 {
		radiusKm = 10
	}
	query := url.Values{
		"lat":    {strconv.FormatFloat(pos.Lat, 'f', -1, 64)},
		"lng":    {strconv.FormatFloat(pos.Lng, 'f', -1, 64)},
		"radius": {strconv.FormatFloat(radiusKm, 'f', -1, 64)},
	}
	raw, err := a.client.do(ctx, http.MethodGet, "/events/search/location", query, nil)
	if err != nil {
		return nil, fmt.Errorf("search events by location: %w", err)
	}
	return decodeEventListBody(raw), nil
}
