package domain

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Actor string

const (
	ActorPublisher Actor = "publisher"
	ActorAdmin     Actor = "admin"
)

// statusTransitions is the full set of statuses each actor may force an
// event into. The admin drives the review workflow (publish/unpublish);
// an owning publisher may self-revert or self-archive through the generic
// edit path but can never set published. Note that nothing here (and no
// dedicated endpoint) moves an event out of archived: the only producer
// of archived rows is a publisher edit.
var statusTransitions = map[Actor]map[Status]bool{
	ActorAdmin: {
		StatusPublished: true,
		StatusDraft:     true,
	},
	ActorPublisher: {
		StatusDraft:    true,
		StatusArchived: true,
	},
}

// MaySet reports whether the actor is allowed to force status s.
func (a Actor) MaySet(s Status) bool {
	return statusTransitions[a][s]
}

// Event is a local-event listing submitted by a publisher and reviewed by
// the admin. Published events are publicly readable; drafts are not.
type Event struct {
	ID            int64
	City          string
	Title         string
	Description   *string
	StartDatetime time.Time
	EndDatetime   *time.Time
	Location      *string
	Organizer     *string
	Status        Status
	SourceURL     *string
	ExternalID    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	// PublisherID is nil for seed or admin-created rows and immutable
	// after creation.
	PublisherID *int64
}

// EventFilter narrows event listings. Zero values mean "no filter".
type EventFilter struct {
	City        string // already normalized; matched case-insensitively
	Status      Status
	Limit       int
	Offset      int
	NewestFirst bool // created_at DESC instead of start_datetime ASC
}
