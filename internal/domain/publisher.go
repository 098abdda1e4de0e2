package domain

// Publisher is a credentialed tenant allowed to submit draft events for a
// restricted set of cities. Publishers are never hard-deleted; a
// deactivated publisher fails all future authentication.
type Publisher struct {
	ID            int64
	Name          string
	APIKey        string
	AllowedCities CityList
	Active        bool
}
