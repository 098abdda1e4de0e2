package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/enumclawevents/opencircle-api/internal/app"
	"github.com/enumclawevents/opencircle-api/internal/domain"
	"github.com/enumclawevents/opencircle-api/internal/metrics"
)

const (
	headerAdminKey     = "X-Admin-Key"
	headerPublisherKey = "X-Publisher-Key"
)

const (
	defaultCity  = "Enumclaw"
	defaultLimit = 50
)

// PublisherResolver authenticates a publisher API key.
type PublisherResolver interface {
	ResolvePublisher(ctx context.Context, apiKey string) (domain.Publisher, error)
}

// PublicEventService is the surface needed by the /events collection
// endpoint.
type PublicEventService interface {
	ListPublicEvents(ctx context.Context, in app.PublicListInput) ([]domain.Event, error)
	CreateEvent(ctx context.Context, pub domain.Publisher, in app.CreateEventInput) (domain.Event, error)
}

// EventItemService is the surface needed by the /events/{id} endpoint.
type EventItemService interface {
	GetPublishedEvent(ctx context.Context, id int64) (domain.Event, error)
	UpdateEvent(ctx context.Context, pub domain.Publisher, id int64, in app.UpdateEventInput) (domain.Event, error)
	DeleteEvent(ctx context.Context, pub domain.Publisher, id int64) error
}

// HandleEvents serves GET (public list) and POST (publisher draft
// creation) on /events.
func HandleEvents(svc PublicEventService, auth PublisherResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			in := app.PublicListInput{City: defaultCity, Limit: defaultLimit}
			q := r.URL.Query()
			if q.Has("city") {
				in.City = q.Get("city")
			}
			if raw := q.Get("limit"); raw != "" {
				limit, err := strconv.Atoi(raw)
				if err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidLimit, "invalid limit")
					return
				}
				in.Limit = limit
			}
			if raw := q.Get("offset"); raw != "" {
				offset, err := strconv.Atoi(raw)
				if err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidOffset, "invalid offset")
					return
				}
				in.Offset = offset
			}
			if raw := q.Get("include_drafts"); raw != "" {
				include, err := strconv.ParseBool(raw)
				if err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidIncludeDrafts, "invalid include_drafts")
					return
				}
				in.IncludeDrafts = include
			}

			events, err := svc.ListPublicEvents(r.Context(), in)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newEventResponses(events))
		case http.MethodPost:
			pub, err := auth.ResolvePublisher(r.Context(), r.Header.Get(headerPublisherKey))
			if err != nil {
				writeDomainError(w, err)
				return
			}

			var req createEventRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			in, err := req.toInput()
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDatetime, "invalid datetime format")
				return
			}

			event, err := svc.CreateEvent(r.Context(), pub, in)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			metrics.EventsCreatedTotal.Inc()
			writeJSON(w, http.StatusCreated, newEventResponse(event))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleEventByID serves GET/PATCH/DELETE on /events/{id}.
func HandleEventByID(svc EventItemService, auth PublisherResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseEventIDPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeInvalidID, "invalid event id")
			return
		}

		switch r.Method {
		case http.MethodGet:
			event, err := svc.GetPublishedEvent(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newEventResponse(event))
		case http.MethodPatch:
			pub, err := auth.ResolvePublisher(r.Context(), r.Header.Get(headerPublisherKey))
			if err != nil {
				writeDomainError(w, err)
				return
			}

			var req updateEventRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			in, err := req.toInput()
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidDatetime, "invalid datetime format")
				return
			}

			event, err := svc.UpdateEvent(r.Context(), pub, id, in)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newEventResponse(event))
		case http.MethodDelete:
			pub, err := auth.ResolvePublisher(r.Context(), r.Header.Get(headerPublisherKey))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			if err := svc.DeleteEvent(r.Context(), pub, id); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type createEventRequest struct {
	City          string  `json:"city"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	StartDatetime string  `json:"start_datetime"`
	EndDatetime   *string `json:"end_datetime"`
	Location      *string `json:"location"`
	Organizer     *string `json:"organizer"`
	SourceURL     *string `json:"source_url"`
	ExternalID    *string `json:"external_id"`
}

func (r createEventRequest) toInput() (app.CreateEventInput, error) {
	in := app.CreateEventInput{
		City:        r.City,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Organizer:   r.Organizer,
		SourceURL:   r.SourceURL,
		ExternalID:  r.ExternalID,
	}
	if r.StartDatetime != "" {
		start, err := parseDatetime(r.StartDatetime)
		if err != nil {
			return app.CreateEventInput{}, err
		}
		in.StartDatetime = &start
	}
	if r.EndDatetime != nil {
		end, err := parseDatetime(*r.EndDatetime)
		if err != nil {
			return app.CreateEventInput{}, err
		}
		in.EndDatetime = &end
	}
	return in, nil
}

// optionalString distinguishes a field that is absent from one set to an
// explicit null.
type optionalString struct {
	set   bool
	value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

type updateEventRequest struct {
	City          *string        `json:"city"`
	Title         *string        `json:"title"`
	Description   *string        `json:"description"`
	StartDatetime *string        `json:"start_datetime"`
	EndDatetime   optionalString `json:"end_datetime"`
	Location      *string        `json:"location"`
	Organizer     *string        `json:"organizer"`
	SourceURL     *string        `json:"source_url"`
	ExternalID    *string        `json:"external_id"`
	Status        *string        `json:"status"`
}

func (r updateEventRequest) toInput() (app.UpdateEventInput, error) {
	in := app.UpdateEventInput{
		City:        r.City,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Organizer:   r.Organizer,
		SourceURL:   r.SourceURL,
		ExternalID:  r.ExternalID,
		Status:      r.Status,
	}
	if r.StartDatetime != nil {
		start, err := parseDatetime(*r.StartDatetime)
		if err != nil {
			return app.UpdateEventInput{}, err
		}
		in.StartDatetime = &start
	}
	if r.EndDatetime.set {
		if r.EndDatetime.value == nil {
			in.ClearEndDatetime = true
		} else {
			end, err := parseDatetime(*r.EndDatetime.value)
			if err != nil {
				return app.UpdateEventInput{}, err
			}
			in.EndDatetime = &end
		}
	}
	return in, nil
}

type eventResponse struct {
	ID            int64      `json:"id"`
	City          string     `json:"city"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	StartDatetime time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
	Location      *string    `json:"location"`
	Organizer     *string    `json:"organizer"`
	Status        string     `json:"status"`
	SourceURL     *string    `json:"source_url"`
	ExternalID    *string    `json:"external_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PublisherID   *int64     `json:"publisher_id"`
}

func newEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:            e.ID,
		City:          e.City,
		Title:         e.Title,
		Description:   e.Description,
		StartDatetime: e.StartDatetime,
		EndDatetime:   e.EndDatetime,
		Location:      e.Location,
		Organizer:     e.Organizer,
		Status:        string(e.Status),
		SourceURL:     e.SourceURL,
		ExternalID:    e.ExternalID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		PublisherID:   e.PublisherID,
	}
}

func newEventResponses(events []domain.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	return out
}

func parseDatetime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseEventIDPath(path string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "events" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
