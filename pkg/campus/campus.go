// Package campus maps program keywords to the campuses that teach them.
package campus

import (
	"slices"
	"strings"
)

// Campus codes.
const (
	NewYork   = "ny"
	NewJersey = "nj"
)

// programCampus is the static keyword to campus table. A program taught at
// both campuses appears under both codes.
var programCampus = []struct {
	keyword string
	campus  string
}{
	{"esthetics", NewYork},
	{"esthetic", NewYork},
	{"aesthetics", NewYork},
	{"aesthetic", NewYork},
	{"nails", NewYork},
	{"nail", NewYork},
	{"waxing", NewYork},
	{"wax", NewYork},
	{"makeup", NewYork},
	{"cidesco", NewYork},
	{"skin care", NewJersey},
	{"skincare", NewJersey},
	{"cosmetology", NewJersey},
	{"hair", NewJersey},
	{"hairstyling", NewJersey},
	{"manicure", NewJersey},
	{"barbering", NewJersey},
	{"barber", NewJersey},
	{"teacher training", NewJersey},
	{"teaching training", NewJersey},
	{"instructor", NewJersey},
}

// Set is a sorted, duplicate-free list of campus codes.
type Set []string

// Infer returns every campus whose program keywords appear in text.
func Infer(text string) Set {
	lowered := strings.ToLower(text)

	var set Set
	for _, entry := range programCampus {
		if strings.Contains(lowered, entry.keyword) && !slices.Contains(set, entry.campus) {
			set = append(set, entry.campus)
		}
	}
	slices.Sort(set)
	return set
}

// Has reports whether code is in the set.
func (s Set) Has(code string) bool {
	return slices.Contains(s, code)
}

// String renders the set as "ny", "nj", "nj,ny" or "unknown".
func (s Set) String() string {
	if len(s) == 0 {
		return "unknown"
	}
	return strings.Join(s, ",")
}

// Policy describes where the mapped programs are taught, for the prompt.
func (s Set) Policy() string {
	switch {
	case s.Has(NewYork) && s.Has(NewJersey):
		return "The programs mentioned are split across campuses: confirm which program and campus (New York or Wayne, New Jersey) the student prefers."
	case s.Has(NewYork):
		return "The program mentioned is taught at the New York campus."
	case s.Has(NewJersey):
		return "The program mentioned is taught at the Wayne, New Jersey campus."
	default:
		return "No program mentioned yet: ask which program interests them before naming a campus."
	}
}
