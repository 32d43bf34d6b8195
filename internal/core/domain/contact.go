package domain

import (
	"strings"
	"time"
)

// Contact is a person stored in the address book.
//
// CategoryName and SubCategoryName are never persisted; the store resolves
// them from the category tables on every read.
type Contact struct {
	ID                int64
	Name              string
	LastName          string
	Email             string
	Password          string
	CategoryID        int64
	CategoryName      string
	SubCategoryID     *int64
	SubCategoryName   *string
	CustomSubCategory *string
	PhoneNumber       string
	DateOfBirth       time.Time
}

// ContactUpdate holds the fields overwritten by an update. Anything not listed
// here (e.g. CustomSubCategory) keeps its stored value.
type ContactUpdate struct {
	Name          string
	LastName      string
	Email         string
	Password      string
	CategoryID    int64
	SubCategoryID *int64
	PhoneNumber   string
	DateOfBirth   time.Time
}

// ContactFilter narrows a contact search. Empty fields are ignored; non-empty
// fields are case-sensitive substring matches combined with AND.
type ContactFilter struct {
	LastName    string
	PhoneNumber string
}

// IsEmpty reports whether the filter matches every contact.
func (f ContactFilter) IsEmpty() bool {
	return f.LastName == "" && f.PhoneNumber == ""
}

// Matches reports whether c passes the filter. Stores implement the same
// predicate natively; the Postgres one uses strpos, which is case-sensitive.
func (f ContactFilter) Matches(c *Contact) bool {
	if f.LastName != "" && !strings.Contains(c.LastName, f.LastName) {
		return false
	}
	if f.PhoneNumber != "" && !strings.Contains(c.PhoneNumber, f.PhoneNumber) {
		return false
	}
	return true
}
