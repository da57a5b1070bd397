package profileinator

import (
	"encoding/base64"
	"testing"
)

func TestEncodeVariant(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		want    string
	}{
		{
			name:    "image bytes encode as base64",
			variant: Variant{Data: []byte("image-bytes")},
			want:    base64.StdEncoding.EncodeToString([]byte("image-bytes")),
		},
		{
			name:    "failed slot encodes the placeholder token",
			variant: Variant{},
			want:    base64.StdEncoding.EncodeToString([]byte(PlaceholderToken)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeVariant(tt.variant); got != tt.want {
				t.Errorf("EncodeVariant() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeVariants_RoundTrip(t *testing.T) {
	variants := []Variant{
		{Data: []byte("first")},
		{}, // failed slot
		{Data: []byte("third")},
	}

	encoded := EncodeVariants(variants)
	if len(encoded) != len(variants) {
		t.Fatalf("expected %d entries, got %d", len(variants), len(encoded))
	}

	for i, e := range encoded {
		decoded, err := base64.StdEncoding.DecodeString(e)
		if err != nil {
			t.Fatalf("entry %d is not valid base64: %v", i, err)
		}
		if len(decoded) == 0 {
			t.Errorf("entry %d decoded to an empty value", i)
		}
	}

	if middle, _ := base64.StdEncoding.DecodeString(encoded[1]); string(middle) != PlaceholderToken {
		t.Errorf("failed slot decoded to %q, want %q", middle, PlaceholderToken)
	}
}
