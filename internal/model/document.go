package model

import "github.com/rotisserie/eris"

// ErrExtractionFailed is the terminal business-logic outcome: every method
// ran and no required field category was populated. Distinct from a
// low-confidence record so callers can tell "parsed poorly" from "could not
// parse at all".
var ErrExtractionFailed = eris.New("model: extraction failed: no usable fields recovered")

// ErrUnreadableDocument means the input could not be opened or parsed at
// all. The only error that aborts a parse before extraction begins.
var ErrUnreadableDocument = eris.New("model: unreadable document")

// Document is the finalized output record for one parsed document. Exactly
// one of Paystub or W2 is set, matching Kind. Immutable once assembled.
type Document struct {
	Kind    DocumentKind `json:"document_kind"`
	Paystub *PaystubData `json:"paystub,omitempty"`
	W2      *W2Data      `json:"w2,omitempty"`

	Confidence          float64         `json:"extraction_confidence"`
	ConfidenceBreakdown []CategoryScore `json:"confidence_breakdown"`
	Warnings            []Warning       `json:"validation_warnings"`

	// Provenance holds the merged tagged field values keyed by field key,
	// recording which method produced each value.
	Provenance FieldMap `json:"provenance,omitempty"`

	Metadata ProcessingMetadata `json:"processing_metadata"`
}
