package app

import (
	"context"
	"strings"

	"github.com/enumclawevents/opencircle-api/internal/clock"
	"github.com/enumclawevents/opencircle-api/internal/domain"
	"github.com/google/uuid"
)

type PublisherRepository interface {
	CreatePublisher(ctx context.Context, pub domain.Publisher) (domain.Publisher, error)
	ListPublishers(ctx context.Context) ([]domain.Publisher, error)
	SetPublisherActive(ctx context.Context, id int64, active bool) (domain.Publisher, error)
}

// AdminService covers publisher management and the review workflow.
type AdminService struct {
	publishers PublisherRepository
	events     EventRepository
	clock      clock.Clock
}

func NewAdminService(publishers PublisherRepository, events EventRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		publishers: publishers,
		events:     events,
		clock:      clk,
	}
}

type CreatePublisherInput struct {
	Name          string
	AllowedCities []string
	Active        bool
}

// CreatePublisher registers a tenant with a server-generated API key.
func (s *AdminService) CreatePublisher(ctx context.Context, in CreatePublisherInput) (domain.Publisher, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Publisher{}, domain.ErrPublisherNameRequired
	}

	pub := domain.Publisher{
		Name:          name,
		APIKey:        uuid.NewString(),
		AllowedCities: domain.NewCityList(in.AllowedCities),
		Active:        in.Active,
	}
	return s.publishers.CreatePublisher(ctx, pub)
}

func (s *AdminService) ListPublishers(ctx context.Context) ([]domain.Publisher, error) {
	return s.publishers.ListPublishers(ctx)
}

// DeactivatePublisher soft-disables a publisher. There is no hard delete;
// a deactivated publisher fails authentication from the next request on.
func (s *AdminService) DeactivatePublisher(ctx context.Context, id int64) (domain.Publisher, error) {
	return s.publishers.SetPublisherActive(ctx, id, false)
}

type AdminListEventsInput struct {
	City   string
	Status string
	Limit  int
	Offset int
}

func (s *AdminService) ListEvents(ctx context.Context, in AdminListEventsInput) ([]domain.Event, error) {
	if err := validatePage(in.Limit, in.Offset); err != nil {
		return nil, err
	}

	filter := domain.EventFilter{
		City:        domain.NormalizeCity(in.City),
		Limit:       in.Limit,
		Offset:      in.Offset,
		NewestFirst: true,
	}
	if in.Status != "" {
		status := domain.Status(in.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	return s.events.ListEvents(ctx, filter)
}

// PublishEvent forces an event into the published state.
func (s *AdminService) PublishEvent(ctx context.Context, id int64) (domain.Event, error) {
	return s.setStatus(ctx, id, domain.StatusPublished)
}

// UnpublishEvent reverts an event to draft.
func (s *AdminService) UnpublishEvent(ctx context.Context, id int64) (domain.Event, error) {
	return s.setStatus(ctx, id, domain.StatusDraft)
}

func (s *AdminService) setStatus(ctx context.Context, id int64, to domain.Status) (domain.Event, error) {
	if !domain.ActorAdmin.MaySet(to) {
		return domain.Event{}, domain.ErrInvalidStatus
	}

	var result domain.Event
	err := s.events.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.events.GetEventForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		event.Status = to
		event.UpdatedAt = s.clock.Now()
		if err := s.events.UpdateEvent(txCtx, event); err != nil {
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
