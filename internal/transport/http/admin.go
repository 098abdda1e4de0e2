package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/enumclawevents/opencircle-api/internal/app"
	"github.com/enumclawevents/opencircle-api/internal/domain"
	"github.com/enumclawevents/opencircle-api/internal/metrics"
)

// AdminGuard checks the shared admin secret.
type AdminGuard interface {
	RequireAdmin(presented string) error
}

// PublisherAdminService is the surface needed by the /admin/publishers
// endpoints.
type PublisherAdminService interface {
	CreatePublisher(ctx context.Context, in app.CreatePublisherInput) (domain.Publisher, error)
	ListPublishers(ctx context.Context) ([]domain.Publisher, error)
	DeactivatePublisher(ctx context.Context, id int64) (domain.Publisher, error)
}

// EventAdminService is the surface needed by the /admin/events endpoints.
type EventAdminService interface {
	ListEvents(ctx context.Context, in app.AdminListEventsInput) ([]domain.Event, error)
	PublishEvent(ctx context.Context, id int64) (domain.Event, error)
	UnpublishEvent(ctx context.Context, id int64) (domain.Event, error)
}

// HandleAdminPublishers serves POST (register) and GET (list) on
// /admin/publishers.
func HandleAdminPublishers(svc PublisherAdminService, auth AdminGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(r.Header.Get(headerAdminKey)); err != nil {
			writeDomainError(w, err)
			return
		}

		switch r.Method {
		case http.MethodGet:
			pubs, err := svc.ListPublishers(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newPublisherResponses(pubs))
		case http.MethodPost:
			var req createPublisherRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			active := true
			if req.IsActive != nil {
				active = *req.IsActive
			}
			pub, err := svc.CreatePublisher(r.Context(), app.CreatePublisherInput{
				Name:          req.Name,
				AllowedCities: req.AllowedCities,
				Active:        active,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, newPublisherResponse(pub))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminPublisherActions serves PATCH /admin/publishers/{id}/deactivate.
func HandleAdminPublisherActions(svc PublisherAdminService, auth AdminGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(r.Header.Get(headerAdminKey)); err != nil {
			writeDomainError(w, err)
			return
		}

		id, action, ok := parseActionPath(r.URL.Path, "publishers")
		if !ok || action != "deactivate" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPatch {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		pub, err := svc.DeactivatePublisher(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newPublisherResponse(pub))
	}
}

// HandleAdminEvents serves GET /admin/events with city/status filters.
func HandleAdminEvents(svc EventAdminService, auth AdminGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(r.Header.Get(headerAdminKey)); err != nil {
			writeDomainError(w, err)
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		in := app.AdminListEventsInput{Limit: defaultLimit}
		q := r.URL.Query()
		in.City = q.Get("city")
		in.Status = q.Get("status")
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

		events, err := svc.ListEvents(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponses(events))
	}
}

// HandleAdminEventActions serves PATCH /admin/events/{id}/publish and
// /admin/events/{id}/unpublish.
func HandleAdminEventActions(svc EventAdminService, auth AdminGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(r.Header.Get(headerAdminKey)); err != nil {
			writeDomainError(w, err)
			return
		}

		id, action, ok := parseActionPath(r.URL.Path, "events")
		if !ok || (action != "publish" && action != "unpublish") {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPatch {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var event domain.Event
		var err error
		if action == "publish" {
			event, err = svc.PublishEvent(r.Context(), id)
		} else {
			event, err = svc.UnpublishEvent(r.Context(), id)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if action == "publish" {
			metrics.EventsPublishedTotal.Inc()
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

type createPublisherRequest struct {
	Name          string   `json:"name"`
	AllowedCities []string `json:"allowed_cities"`
	IsActive      *bool    `json:"is_active"`
}

// publisherResponse includes the raw API key: the admin surface is a
// trusted channel and key recovery goes through this listing.
type publisherResponse struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	APIKey        string   `json:"api_key"`
	AllowedCities []string `json:"allowed_cities"`
	IsActive      bool     `json:"is_active"`
}

func newPublisherResponse(p domain.Publisher) publisherResponse {
	return publisherResponse{
		ID:            p.ID,
		Name:          p.Name,
		APIKey:        p.APIKey,
		AllowedCities: append([]string{}, p.AllowedCities...),
		IsActive:      p.Active,
	}
}

func newPublisherResponses(pubs []domain.Publisher) []publisherResponse {
	out := make([]publisherResponse, 0, len(pubs))
	for _, p := range pubs {
		out = append(out, newPublisherResponse(p))
	}
	return out
}

// parseActionPath matches /admin/<collection>/{id}/<action>.
func parseActionPath(path, collection string) (int64, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 || parts[0] != "admin" || parts[1] != collection {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, parts[3], true
}
