package engine

import (
	"time"

	"github.com/tartampluch/go-amlich/internal/lunar"
)

// BirthdayEntry is a contact reduced to what the feed and the API need.
type BirthdayEntry struct {
	// UID is a stable hash of name and birth date.
	UID string `json:"uid"`

	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"dateOfBirth"`

	// YearKnown is false for vCard dates of the form --MM-DD.
	YearKnown bool `json:"yearKnown"`

	NextOccurrence time.Time `json:"nextOccurrence"`

	// AgeNext is the age reached at NextOccurrence; 0 when YearKnown is false.
	AgeNext int `json:"ageNext"`

	// Lunar is the lunar birth date. It is nil when the year is unknown or
	// the birth date lies outside the lunar table.
	Lunar *lunar.Date `json:"lunar,omitempty"`
}
