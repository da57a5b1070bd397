package profileinator

import "encoding/base64"

// PlaceholderToken is the literal encoded in place of a failed variant's
// bytes, so the client always receives a non-empty display value.
const PlaceholderToken = "placeholder"

// EncodeVariant returns the transport-safe encoding of one variant's bytes.
// Failed slots encode the placeholder token rather than an empty string.
func EncodeVariant(v Variant) string {
	data := v.Data
	if len(data) == 0 {
		data = []byte(PlaceholderToken)
	}
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeVariants encodes every variant in order.
func EncodeVariants(variants []Variant) []string {
	out := make([]string, len(variants))
	for i, v := range variants {
		out[i] = EncodeVariant(v)
	}
	return out
}
