package models

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	TaxonNameMaxLength = 256
	TaxonSlugMaxLength = 50
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Taxon is the name+slug pair shared by categories and genres. It is embedded
// into both tables rather than being a table of its own.
type Taxon struct {
	Name string `gorm:"size:256;not null" json:"name"`
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

// Validate checks name and slug constraints and returns field keyed messages.
func (t Taxon) Validate() map[string]string {
	problems := map[string]string{}

	name := strings.TrimSpace(t.Name)
	switch {
	case name == "":
		problems["name"] = "This field may not be blank."
	case utf8.RuneCountInString(name) > TaxonNameMaxLength:
		problems["name"] = "Ensure this field has no more than 256 characters."
	}

	if err := ValidateSlug(t.Slug); err != nil {
		problems["slug"] = err.Error()
	}

	if len(problems) == 0 {
		return nil
	}
	return problems
}

// ValidateSlug enforces the URL-safe slug alphabet and length.
func ValidateSlug(slug string) error {
	switch {
	case slug == "":
		return errors.New("This field may not be blank.")
	case len(slug) > TaxonSlugMaxLength:
		return errors.New("Ensure this field has no more than 50 characters.")
	case !slugPattern.MatchString(slug):
		return errors.New("Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	return nil
}
