package rest

import (
	"encoding/json"

	"unalone/internal/domain"
)

// Wire format of an event as the backend sends it: nested GeoJSON point,
// nested participants, and older key spellings kept for compatibility
// (dateTime/datetime, maxParticipants/maxAttendees, contactInfo/contactLink,
// _id/id).
type wireEvent struct {
	MongoID         string            `json:"_id"`
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Type            string            `json:"type"`
	Audience        string            `json:"audience"`
	Description     string            `json:"description"`
	DateTime        string            `json:"dateTime"`
	Datetime        string            `json:"datetime"`
	PlaceName       string            `json:"placeName"`
	Location        *wireLocation     `json:"location"`
	MaxParticipants *int              `json:"maxParticipants"`
	MaxAttendees    *int              `json:"maxAttendees"`
	Participants    []wireParticipant `json:"participants"`
	ContactInfo     string            `json:"contactInfo"`
	ContactLink     string            `json:"contactLink"`
	Creator         json.RawMessage   `json:"creator"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
}

// wireLocation is a GeoJSON point: coordinates are [lng, lat].
type wireLocation struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address"`
}

// wireParticipant's user field is either a populated {_id, username} object
// or a plain id string.
type wireParticipant struct {
	User     json.RawMessage `json:"user"`
	Role     string          `json:"role"`
	JoinedAt string          `json:"joinedAt"`
}

// wireRef decodes an id that arrives either as a bare string or as an
// object carrying _id/id.
func wireRef(raw json.RawMessage) (id, username string) {
	if len(raw) == 0 {
		return "", ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, ""
	}
	var obj struct {
		MongoID  string `json:"_id"`
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", ""
	}
	if obj.MongoID != "" {
		return obj.MongoID, obj.Username
	}
	return obj.ID, obj.Username
}

// DecodeEvent normalizes a raw wire event into the domain shape. Malformed
// input degrades to the zero-value Event instead of failing: the push
// channel is untrusted and one bad message must not break reconciliation.
func DecodeEvent(raw json.RawMessage) domain.Event {
	var w wireEvent
	if len(raw) == 0 || json.Unmarshal(raw, &w) != nil {
		return domain.Event{}
	}
	return w.toDomain()
}

func (w wireEvent) toDomain() domain.Event {
	id := w.MongoID
	if id == "" {
		id = w.ID
	}

	var lat, lng float64
	placeName := w.PlaceName
	if w.Location != nil {
		if len(w.Location.Coordinates) >= 2 {
			lng = w.Location.Coordinates[0]
			lat = w.Location.Coordinates[1]
		}
		if w.Location.Address != "" {
			placeName = w.Location.Address
		}
	}

	datetime := w.DateTime
	if datetime == "" {
		datetime = w.Datetime
	}

	maxAttendees := 0
	if w.MaxParticipants != nil {
		maxAttendees = *w.MaxParticipants
	} else if w.MaxAttendees != nil {
		maxAttendees = *w.MaxAttendees
	}

	contactLink := w.ContactInfo
	if contactLink == "" {
		contactLink = w.ContactLink
	}

	attendees := make([]domain.Attendee, 0, len(w.Participants))
	for _, p := range w.Participants {
		id, username := wireRef(p.User)
		role := domain.AttendeeRole(p.Role)
		if role == "" {
			role = domain.RoleMember
		}
		attendees = append(attendees, domain.Attendee{
			ID:       id,
			Name:     username,
			Role:     role,
			JoinedAt: p.JoinedAt,
		})
	}

	createdBy, _ := wireRef(w.Creator)

	return domain.Event{
		ID:           id,
		Title:        w.Title,
		Type:         w.Type,
		Audience:     w.Audience,
		Description:  w.Description,
		PlaceName:    placeName,
		Datetime:     datetime,
		Lat:          lat,
		Lng:          lng,
		MaxAttendees: maxAttendees,
		Attendees:    attendees,
		ContactLink:  contactLink,
		CreatedBy:    createdBy,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

// wireEventPayload is the push notification envelope carrying a full event.
type wireEventPayload struct {
	Event json.RawMessage `json:"event"`
}

// DecodeEventPayload decodes a push payload of the form {"event": {...}}.
func DecodeEventPayload(raw json.RawMessage) domain.Event {
	var p wireEventPayload
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil {
		return domain.Event{}
	}
	return DecodeEvent(p.Event)
}

// encodeEventDraft packs a draft into the backend wire format: separate
// lat/lng become a GeoJSON [lng, lat] point.
func encodeEventDraft(d domain.EventDraft) map[string]any {
	payload := map[string]any{
		"title":       d.Title,
		"description": d.Description,
		"type":        d.Type,
		"audience":    d.Audience,
		"dateTime":    d.Datetime,
		"location": map[string]any{
			"type":        "Point",
			"coordinates": []float64{d.Lng, d.Lat},
			"address":     d.PlaceName,
		},
	}
	if d.MaxAttendees > 0 {
		payload["maxParticipants"] = d.MaxAttendees
	}
	if d.ContactLink != "" {
		payload["contactInfo"] = d.ContactLink
	}
	return payload
}

// decodeEventBody unwraps a single-event response: {"data":{"event":…}},
// {"event":…}, or a bare event object.
func decodeEventBody(raw []byte) domain.Event {
	var env struct {
		Data struct {
			Event json.RawMessage `json:"event"`
		} `json:"data"`
		Event json.RawMessage `json:"event"`
	}
	_ = json.Unmarshal(raw, &env)
	switch {
	case len(env.Data.Event) > 0:
		return DecodeEvent(env.Data.Event)
	case len(env.Event) > 0:
		return DecodeEvent(env.Event)
	default:
		return DecodeEvent(raw)
	}
}

// decodeEventListBody unwraps a list response: {"data":{"events":[…]}},
// {"events":[…]}, or a bare array.
func decodeEventListBody(raw []byte) []domain.Event {
	var env struct {
		Data struct {
			Events []json.RawMessage `json:"events"`
		} `json:"data"`
		Events []json.RawMessage `json:"events"`
	}
	_ = json.Unmarshal(raw, &env)
	list := env.Data.Events
	if list == nil {
		list = env.Events
	}
	if list == nil {
		var bare []json.RawMessage
		if err := json.Unmarshal(raw, &bare); err == nil {
			list = bare
		}
	}
	events := make([]domain.Event, 0, len(list))
	for _, item := range list {
		events = append(events, DecodeEvent(item))
	}
	return events
}

// Wire format of a user; id and name have older spellings too.
type wireUser struct {
	MongoID   string `json:"_id"`
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Interests string `json:"interests"`
}

func (w wireUser) toDomain() domain.User {
	id := w.MongoID
	if id == "" {
		id = w.ID
	}
	name := w.Username
	if name == "" {
		name = w.Name
	}
	return domain.User{ID: id, Name: name, Email: w.Email, Age: w.Age, Interests: w.Interests}
}

type wireChatMessage struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
	Text    string `json:"text"`
	Sender  struct {
		MongoID  string `json:"_id"`
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"sender"`
	CreatedAt string `json:"createdAt"`
}

func (w wireChatMessage) toDomain(eventID string) domain.ChatMessage {
	id := w.MongoID
	if id == "" {
		id = w.ID
	}
	senderID := w.Sender.MongoID
	if senderID == "" {
		senderID = w.Sender.ID
	}
	return domain.ChatMessage{
		ID:      id,
		EventID: eventID,
		Text:    w.Text,
		Sender: domain.ChatSender{
			ID:       senderID,
			Username: w.Sender.Username,
		},
		CreatedAt: w.CreatedAt,
	}
}

// DecodeChatMessagePayload decodes a chat push payload:
// {"eventId": "...", "message": {...}}.
func DecodeChatMessagePayload(raw json.RawMessage) (domain.ChatMessage, bool) {
	var p struct {
		EventID string          `json:"eventId"`
		Message json.RawMessage `json:"message"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil {
		return domain.ChatMessage{}, false
	}
	var w wireChatMessage
	if json.Unmarshal(p.Message, &w) != nil {
		return domain.ChatMessage{}, false
	}
	msg := w.toDomain(p.EventID)
	return msg, msg.ID != ""
}
