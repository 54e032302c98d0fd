// Package exercises holds the exercise catalogue model, the canonical
// exercise taxonomy and the bulk importer that seeds the catalogue.
package exercises

import (
	"strings"

	"github.com/google/uuid"
)

// Exercise is one catalogue entry.
type Exercise struct {
	ID               string   `json:"id" firestore:"id"`
	Slug             string   `json:"slug" firestore:"slug"`
	Name             string   `json:"name" firestore:"name"`
	Category         string   `json:"category,omitempty" firestore:"category,omitempty"`
	Equipment        string   `json:"equipment,omitempty" firestore:"equipment,omitempty"`
	PrimaryMuscle    string   `json:"primary_muscle,omitempty" firestore:"primary_muscle,omitempty"`
	SecondaryMuscles []string `json:"secondary_muscles,omitempty" firestore:"secondary_muscles,omitempty"`
	Instructions     string   `json:"instructions,omitempty" firestore:"instructions,omitempty"`
}

// idNamespace scopes the deterministic exercise IDs.
var idNamespace = uuid.MustParse("6f1c2a8e-3b7d-4c59-9e0a-5d2f4b8c1a73")

// IDForSlug returns the stable ID for a slug. Re-importing the same slug
// always yields the same ID.
func IDForSlug(slug string) string {
	return uuid.NewSHA1(idNamespace, []byte(slug)).String()
}

// Slugify turns a display name into a catalogue slug: "World's Greatest
// Stretch" becomes "worlds-greatest-stretch".
func Slugify(name string) string {
	return strings.ReplaceAll(normalize(name), " ", "-")
}

// Normalize fills the derived fields of ex from the taxonomy. Fields already
// set on the record win over taxonomy values. Name and slug come from the
// record itself, so variants the taxonomy folds into one canonical exercise,
// such as "Chin Up" and "Pull Up", stay distinct catalogue entries.
func Normalize(ex Exercise) Exercise {
	ex.Name = strings.TrimSpace(ex.Name)
	if res := Lookup(ex.Name); res.Matched {
		if ex.Category == "" {
			ex.Category = res.Category
		}
		if ex.Equipment == "" {
			ex.Equipment = res.Equipment
		}
		if ex.PrimaryMuscle == "" {
			ex.PrimaryMuscle = res.Primary
		}
		if len(ex.SecondaryMuscles) == 0 {
			ex.SecondaryMuscles = res.Secondary
		}
	}
	if ex.Slug == "" {
		ex.Slug = Slugify(ex.Name)
	}
	ex.ID = IDForSlug(ex.Slug)
	return ex
}
