package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyField       = errors.New("all sponsor fields are required")
	ErrIndexOutOfRange  = errors.New("sponsor index out of range")
	ErrNoEditInProgress = errors.New("no sponsor edit in progress")
)

// SponsorRecord is one displayable sponsor entry. Records have positional
// identity: a record is addressed by its index in the stored list, so deletes
// shift the identity of every subsequent record.
type SponsorRecord struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
	Link string `json:"link"`
}

// Validate rejects records with any empty field. Whitespace-only values
// count as empty.
func (r SponsorRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" ||
		strings.TrimSpace(r.Logo) == "" ||
		strings.TrimSpace(r.Link) == "" {
		return ErrEmptyField
	}
	return nil
}
