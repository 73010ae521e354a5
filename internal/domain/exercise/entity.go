// Package exercise manages the exercise catalog and the resolution of
// procedurally-described exercise categories to stable identifiers.
package exercise

import (
	"encoding/json"
	"strings"
)

// Item is one catalog entry. For procedurally generated categories the
// content payload is the canonical descriptor; at most one Item exists
// per (AppID, Descriptor), enforced by a store uniqueness constraint.
type Item struct {
	// ID - stable identifier of the exercise.
	ID string

	// AppID - the owning exercise app (category of content shapes).
	AppID string

	// Descriptor - opaque content payload. For procedural categories this
	// is the canonical descriptor produced by CanonicalDescriptor.
	Descriptor string

	// NeedsReview - whether the content awaits human verification.
	NeedsReview bool
}

// proceduralDescriptor is the canonical JSON shape for procedural
// categories. Field order is fixed by the struct so that equal
// categories always serialize to the same bytes.
type proceduralDescriptor struct {
	Category   string `json:"category"`
	Procedural bool   `json:"procedural"`
}

// CanonicalDescriptor returns the canonical descriptor for a procedural
// exercise category. The same category always yields byte-identical
// output, which is what the store's uniqueness constraint keys on.
func CanonicalDescriptor(category string) string {
	b, _ := json.Marshal(proceduralDescriptor{
		Category:   strings.TrimSpace(category),
		Procedural: true,
	})
	return string(b)
}
