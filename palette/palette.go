// Package palette computes a small dominant-colour palette for an image URL.
// It is best effort: every failure yields an empty palette.
package palette

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/pevans/archetyper/character"
	"github.com/pevans/archetyper/fetch"
	"github.com/pevans/archetyper/logger"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultSize is the palette size used when none is configured.
	DefaultSize = 3
	// MaxSize bounds the palette length of a record.
	MaxSize = 5
)

// Extractor fetches images and quantises them into a palette.
type Extractor struct {
	getter fetch.Getter
	log    logger.Logger
}

// New creates an extractor that fetches through getter.
func New(getter fetch.Getter, log logger.Logger) *Extractor {
	return &Extractor{getter: getter, log: log}
}

// Extract returns up to n dominant colours of the image at imageURL, most
// salient first. It never fails: a fetch error, non-2xx status, decode error
// or quantiser error all produce an empty, non-nil slice.
func (e *Extractor) Extract(ctx context.Context, imageURL string, n int) []character.RGB {
	if imageURL == "" {
		return []character.RGB{}
	}
	n = clampSize(n)

	data, err := e.getter.Get(ctx, imageURL)
	if err != nil {
		e.log.Debug("Palette image fetch failed", logger.String("url", imageURL), logger.Err(err))
		return []character.RGB{}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		e.log.Debug("Palette image decode failed", logger.String("url", imageURL), logger.Err(err))
		return []character.RGB{}
	}

	colors, err := Quantize(img, n)
	if err != nil {
		e.log.Debug("Palette quantization failed",
			logger.String("url", imageURL),
			logger.String("format", format),
			logger.Err(err),
		)
		return []character.RGB{}
	}

	return colors
}

// Quantize reduces img to at most n representative colours ordered by pixel
// share. Near-white pixels are ignored as background.
func Quantize(img image.Image, n int) ([]character.RGB, error) {
	n = clampSize(n)

	items, err := prominentcolor.KmeansWithAll(
		n,
		img,
		prominentcolor.ArgumentNoCropping,
		prominentcolor.DefaultSize,
		[]prominentcolor.ColorBackgroundMask{prominentcolor.MaskWhite},
	)
	if err != nil {
		return nil, err
	}

	colors := make([]character.RGB, 0, len(items))
	for _, item := range items {
		if item.Cnt == 0 {
			continue
		}
		colors = append(colors, character.RGB{
			R: channel(item.Color.R),
			G: channel(item.Color.G),
			B: channel(item.Color.B),
		})
	}
	return colors, nil
}

func clampSize(n int) int {
	if n <= 0 {
		return DefaultSize
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}

func channel(v uint32) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
