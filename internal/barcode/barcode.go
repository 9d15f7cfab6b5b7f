// Package barcode decodes scanned plant codes. Two wire formats are
// accepted: the JSON payload embedded in QR labels printed by the
// barcode generator, and the older plain-text PLT- codes that predate
// it. Both must keep working; labels in the field are never reprinted.
package barcode

import (
	"encoding/json"
	"errors"
	"strings"
)

// Kind distinguishes the two accepted scan formats.
type Kind int

const (
	// KindStructured is the JSON QR payload written by the label
	// generator.
	KindStructured Kind = iota

	// KindLegacy is a plain-text code (PLT- prefix or free text
	// containing "plant").
	KindLegacy
)

// ErrInvalidFormat is returned when a payload parses as JSON but is
// not a plant code.
var ErrInvalidFormat = errors.New("invalid plant barcode format")

// ErrNotPlantCode is returned when a plain-text payload matches no
// accepted convention.
var ErrNotPlantCode = errors.New("not a valid plant barcode")

// legacyPrefix is the plain-text code convention: PLT-<id>.
const legacyPrefix = "PLT-"

// Scan is a decoded plant code.
type Scan struct {
	Kind Kind

	// ID is the plant inventory identifier.
	ID string `json:"id"`

	// Name and ScientificName are present on structured payloads only.
	Name           string `json:"name,omitempty"`
	ScientificName string `json:"scientific_name,omitempty"`

	// BusinessID is the issuing business, when embedded in the label.
	BusinessID string `json:"businessId,omitempty"`

	// Barcode is the original printed code.
	Barcode string `json:"barcode,omitempty"`
}

// payload mirrors the QR JSON written by the label generator.
type payload struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	Name           string `json:"name"`
	ScientificName string `json:"scientific_name"`
	BusinessID     string `json:"businessId"`
	Barcode        string `json:"barcode"`
}

// Parse decodes a raw scanned string. JSON is attempted first: a JSON
// payload must declare type "plant" and carry an id. Anything that is
// not JSON is accepted as a legacy code only when it starts with PLT-
// (the id is the suffix) or contains "plant" case-insensitively (the
// id is the whole code). The substring rule is deliberately permissive
// and matches what deployed labels rely on; do not tighten it.
func Parse(raw string) (*Scan, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNotPlantCode
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		if p.Type != "plant" || p.ID == "" {
			return nil, ErrInvalidFormat
		}
		return &Scan{
			Kind:           KindStructured,
			ID:             p.ID,
			Name:           p.Name,
			ScientificName: p.ScientificName,
			BusinessID:     p.BusinessID,
			Barcode:        p.Barcode,
		}, nil
	}

	if strings.HasPrefix(raw, legacyPrefix) {
		return &Scan{
			Kind:    KindLegacy,
			ID:      strings.TrimPrefix(raw, legacyPrefix),
			Barcode: raw,
		}, nil
	}

	if strings.Contains(strings.ToLower(raw), "plant") {
		return &Scan{
			Kind:    KindLegacy,
			ID:      raw,
			Barcode: raw,
		}, nil
	}

	return nil, ErrNotPlantCode
}
