package backend

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/image/draw"

	"github.com/rezonia/invoice-extractor/internal/model"
)

// FitzRasterizer renders PDF pages to fixed-size PNG rasters via MuPDF.
type FitzRasterizer struct{}

// NewFitzRasterizer creates the rasterizer.
func NewFitzRasterizer() *FitzRasterizer { return &FitzRasterizer{} }

// ToImage renders the requested pages (1-indexed), scales each to
// width by height and stacks them vertically into a single PNG. Pixel
// geometry downstream of this call assumes that fixed size.
func (r *FitzRasterizer) ToImage(ctx context.Context, doc model.DocumentRef, pages []int, width, height int) ([]byte, error) {
	if len(pages) == 0 {
		pages = []int{1}
	}

	fdoc, err := fitz.New(string(doc))
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer fdoc.Close()

	dst := image.NewRGBA(image.Rect(0, 0, width, height*len(pages)))
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := fdoc.Image(p - 1)
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", p, err)
		}
		target := image.Rect(0, i*height, width, (i+1)*height)
		draw.ApproxBiLinear.Scale(dst, target, img, img.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
