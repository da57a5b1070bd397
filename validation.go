package profileinator

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrEmptyImageData      = errors.New("image data cannot be empty")
	ErrInvalidMIMEType     = errors.New("file must be an image")
	ErrImageTooLarge       = errors.New("image data exceeds maximum size")
	ErrInvalidVariantCount = errors.New("variant count out of range")
)

// Variant count bounds
const (
	// MinVariants is the smallest number of variants a request may ask for
	MinVariants = 1

	// MaxVariants is the largest number of variants a request may ask for
	MaxVariants = 10

	// DefaultVariants is used when the request does not name a count
	DefaultVariants = 4
)

// MaxImageSize is the maximum allowed upload size in bytes (20MB)
const MaxImageSize = 20 * 1024 * 1024

// ValidateInputImage validates an uploaded image.
func ValidateInputImage(img InputImage) error {
	if len(img.Data) == 0 {
		return ErrEmptyImageData
	}

	if len(img.Data) > MaxImageSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(img.Data), MaxImageSize)
	}

	if !strings.HasPrefix(img.MIMEType, "image/") {
		return fmt.Errorf("%w: %q", ErrInvalidMIMEType, img.MIMEType)
	}

	return nil
}

// ValidateVariantCount validates a requested variant count.
func ValidateVariantCount(count int) error {
	if count < MinVariants || count > MaxVariants {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidVariantCount, count, MinVariants, MaxVariants)
	}
	return nil
}
