package dataset

import (
	"github.com/tksato/wdbc/pkg/errors"
)

// Encoded label values. Positive is fixed as malignant throughout the
// harness; this polarity must not invert anywhere downstream.
const (
	Benign    = 0.0
	Malignant = 1.0
)

// EncodeLabel maps a raw diagnosis label onto its binary indicator:
// "B" -> 0, "M" -> 1. Any other value fails with InvalidLabelError; there
// is no silent coercion. Pure function.
func EncodeLabel(raw string) (float64, error) {
	switch raw {
	case "B":
		return Benign, nil
	case "M":
		return Malignant, nil
	default:
		return 0, errors.NewInvalidLabelError(raw, 0)
	}
}

// DecodeLabel is the inverse mapping, used for reporting.
func DecodeLabel(v float64) string {
	if v == Malignant {
		return "M"
	}
	return "B"
}
