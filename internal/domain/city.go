package domain

import "strings"

// NormalizeCity trims the string and collapses internal whitespace runs
// to a single space. Casing is preserved; comparisons use cityKey.
func NormalizeCity(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cityKey is the case-insensitive membership key for a city name.
func cityKey(s string) string {
	return strings.ToLower(NormalizeCity(s))
}

// CityList is the set of canonical city names a publisher may post to.
type CityList []string

// NewCityList normalizes each name and discards empty entries.
func NewCityList(names []string) CityList {
	out := make(CityList, 0, len(names))
	for _, name := range names {
		name = NormalizeCity(name)
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Allows reports whether city is a member of the list, ignoring case and
// surrounding/internal whitespace differences. This is the single
// membership predicate for both event creation and city edits.
func (l CityList) Allows(city string) bool {
	key := cityKey(city)
	if key == "" {
		return false
	}
	for _, allowed := range l {
		if cityKey(allowed) == key {
			return true
		}
	}
	return false
}
