package app

import (
	"context"
	"strings"
	"time"

	"github.com/enumclawevents/opencircle-api/internal/clock"
	"github.com/enumclawevents/opencircle-api/internal/domain"
)

type EventRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	GetEvent(ctx context.Context, id int64) (domain.Event, error)
	GetEventForUpdate(ctx context.Context, id int64) (domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
}

// EventService enforces the draft/published workflow and the per-field
// mutation rules for publisher-owned events, plus the public read rules.
type EventService struct {
	repo  EventRepository
	clock clock.Clock
}

func NewEventService(repo EventRepository, clk clock.Clock) *EventService {
	return &EventService{
		repo:  repo,
		clock: clk,
	}
}

type CreateEventInput struct {
	City          string
	Title         string
	Description   *string
	StartDatetime *time.Time
	EndDatetime   *time.Time
	Location      *string
	Organizer     *string
	SourceURL     *string
	ExternalID    *string
}

// CreateEvent creates a draft owned by the publisher. Events always enter
// the workflow as drafts; publishing is the admin's call.
func (s *EventService) CreateEvent(ctx context.Context, pub domain.Publisher, in CreateEventInput) (domain.Event, error) {
	city := domain.NormalizeCity(in.City)
	if city == "" {
		return domain.Event{}, domain.ErrCityRequired
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Event{}, domain.ErrTitleRequired
	}
	if in.StartDatetime == nil {
		return domain.Event{}, domain.ErrStartRequired
	}
	if in.EndDatetime != nil && in.EndDatetime.Before(*in.StartDatetime) {
		return domain.Event{}, domain.ErrEndBeforeStart
	}
	if !pub.AllowedCities.Allows(city) {
		return domain.Event{}, domain.ErrCityNotAllowed
	}

	now := s.clock.Now()
	publisherID := pub.ID
	event := domain.Event{
		City:          city,
		Title:         title,
		Description:   trimmed(in.Description),
		StartDatetime: in.StartDatetime.UTC(),
		EndDatetime:   utcTime(in.EndDatetime),
		Location:      trimmed(in.Location),
		Organizer:     trimmed(in.Organizer),
		Status:        domain.StatusDraft,
		SourceURL:     trimmed(in.SourceURL),
		ExternalID:    trimmed(in.ExternalID),
		CreatedAt:     now,
		UpdatedAt:     now,
		PublisherID:   &publisherID,
	}

	return s.repo.CreateEvent(ctx, event)
}

type UpdateEventInput struct {
	City          *string
	Title         *string
	Description   *string
	StartDatetime *time.Time
	EndDatetime   *time.Time
	// ClearEndDatetime removes the stored end date; it wins over
	// EndDatetime.
	ClearEndDatetime bool
	Location         *string
	Organizer        *string
	SourceURL        *string
	ExternalID       *string
	Status           *string
}

// UpdateEvent applies a partial update on behalf of the owning publisher.
// Nil fields keep their stored values; date ordering is re-validated
// against the effective post-update pair.
func (s *EventService) UpdateEvent(ctx context.Context, pub domain.Publisher, id int64, in UpdateEventInput) (domain.Event, error) {
	var result domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if event.PublisherID == nil || *event.PublisherID != pub.ID {
			return domain.ErrNotEventOwner
		}

		if in.Status != nil {
			status := domain.Status(*in.Status)
			if !status.Valid() {
				return domain.ErrInvalidStatus
			}
			if !domain.ActorPublisher.MaySet(status) {
				return domain.ErrPublishRequiresAdmin
			}
			event.Status = status
		}

		if in.City != nil {
			city := domain.NormalizeCity(*in.City)
			if city == "" {
				return domain.ErrCityRequired
			}
			if !pub.AllowedCities.Allows(city) {
				return domain.ErrCityNotAllowed
			}
			event.City = city
		}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return domain.ErrTitleRequired
			}
			event.Title = title
		}
		if in.Description != nil {
			event.Description = trimmed(in.Description)
		}
		if in.Location != nil {
			event.Location = trimmed(in.Location)
		}
		if in.Organizer != nil {
			event.Organizer = trimmed(in.Organizer)
		}
		if in.SourceURL != nil {
			event.SourceURL = trimmed(in.SourceURL)
		}
		if in.ExternalID != nil {
			event.ExternalID = trimmed(in.ExternalID)
		}
		if in.StartDatetime != nil {
			event.StartDatetime = in.StartDatetime.UTC()
		}
		if in.ClearEndDatetime {
			event.EndDatetime = nil
		} else if in.EndDatetime != nil {
			event.EndDatetime = utcTime(in.EndDatetime)
		}
		if event.EndDatetime != nil && event.EndDatetime.Before(event.StartDatetime) {
			return domain.ErrEndBeforeStart
		}

		event.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateEvent(txCtx, event); err != nil {
			return err
		}
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return result, nil
}

// DeleteEvent removes an event permanently. Only the owner may delete.
func (s *EventService) DeleteEvent(ctx context.Context, pub domain.Publisher, id int64) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if event.PublisherID == nil || *event.PublisherID != pub.ID {
			return domain.ErrNotEventOwner
		}
		return s.repo.DeleteEvent(txCtx, id)
	})
}

// GetPublishedEvent returns the event only when it is published. A
// missing event and an unpublished one are indistinguishable to the
// caller.
func (s *EventService) GetPublishedEvent(ctx context.Context, id int64) (domain.Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	if event.Status != domain.StatusPublished {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return event, nil
}

type PublicListInput struct {
	City   string
	Limit  int
	Offset int
	// IncludeDrafts lifts the published-only filter. It is honored for
	// any caller, authenticated or not; see the note in DESIGN.md.
	IncludeDrafts bool
}

func (s *EventService) ListPublicEvents(ctx context.Context, in PublicListInput) ([]domain.Event, error) {
	if err := validatePage(in.Limit, in.Offset); err != nil {
		return nil, err
	}

	// Every stored event carries a city, so a blank value (a whitespace
	// query parameter) matches nothing.
	city := domain.NormalizeCity(in.City)
	if city == "" {
		return nil, nil
	}

	filter := domain.EventFilter{
		City:   city,
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	if !in.IncludeDrafts {
		filter.Status = domain.StatusPublished
	}
	return s.repo.ListEvents(ctx, filter)
}

func validatePage(limit, offset int) error {
	if limit < 1 || limit > 200 {
		return domain.ErrInvalidLimit
	}
	if offset < 0 {
		return domain.ErrInvalidOffset
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
