package domain

import "errors"

var (
	ErrAdminKeyNotConfigured = errors.New("admin key not configured")
	ErrInvalidAdminKey       = errors.New("invalid admin key")
	ErrPublisherKeyRequired  = errors.New("publisher key required")
	ErrInvalidPublisherKey   = errors.New("invalid publisher key")
	ErrPublisherNotFound     = errors.New("publisher not found")
	ErrPublisherNameExists   = errors.New("publisher name already exists")
	ErrPublisherNameRequired = errors.New("publisher name required")
	ErrEventNotFound         = errors.New("event not found")
	ErrNotEventOwner         = errors.New("not allowed to modify this event")
	ErrCityNotAllowed        = errors.New("publisher not allowed to post to this city")
	ErrPublishRequiresAdmin  = errors.New("publish requires admin approval")
	ErrCityRequired          = errors.New("city required")
	ErrTitleRequired         = errors.New("title required")
	ErrStartRequired         = errors.New("start_datetime required")
	ErrEndBeforeStart        = errors.New("end_datetime cannot be before start_datetime")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidLimit          = errors.New("limit must be between 1 and 200")
	ErrInvalidOffset         = errors.New("offset must not be negative")
	ErrDuplicateExternalID   = errors.New("duplicate external_id for this publisher")
	ErrInvalidID             = errors.New("invalid id")
)
