package dataset

import (
	"testing"

	"github.com/tksato/wdbc/pkg/errors"
)

func TestEncodeLabel(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "benign", raw: "B", want: 0},
		{name: "malignant", raw: "M", want: 1},
		{name: "unknown letter", raw: "X", wantErr: true},
		{name: "lower case is not coerced", raw: "b", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "full word is not coerced", raw: "Malignant", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeLabel(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EncodeLabel(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				var invalid *errors.InvalidLabelError
				if !errors.As(err, &invalid) {
					t.Errorf("expected InvalidLabelError, got %T", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("EncodeLabel(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeLabelRoundTrip(t *testing.T) {
	for _, raw := range []string{"B", "M"} {
		v, err := EncodeLabel(raw)
		if err != nil {
			t.Fatal(err)
		}
		if got := DecodeLabel(v); got != raw {
			t.Errorf("DecodeLabel(EncodeLabel(%q)) = %q", raw, got)
		}
	}
}
