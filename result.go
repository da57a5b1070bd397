package profileinator

// InputImage represents an uploaded image.
type InputImage struct {
	// Data is the raw image bytes
	Data []byte

	// MIMEType of the image (e.g., "image/jpeg", "image/png")
	MIMEType string

	// Filename is the original upload filename, if any
	Filename string
}

// GeneratedImage is a single image returned by a Generator.
type GeneratedImage struct {
	// Data contains the raw image bytes
	Data []byte

	// MIMEType of the generated image
	MIMEType string
}

// Variant is one requested stylistic rendering of the uploaded photo.
// An empty Data slice marks a slot whose generation failed; the encoder
// substitutes a placeholder token for such slots.
type Variant struct {
	// Data contains the raw image bytes, empty when generation failed
	Data []byte

	// MIMEType of the generated image, empty when generation failed
	MIMEType string

	// Prompt is the styling prompt this variant was generated from
	Prompt string

	// Index is the position in the result list (0-indexed)
	Index int
}

// Failed reports whether this slot's generation produced no image.
func (v Variant) Failed() bool {
	return len(v.Data) == 0
}
