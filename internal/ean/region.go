package ean

import "image"

// Raster resolution for page 1, chosen for OCR quality on A4 invoices.
const (
	RasterWidth  = 2480
	RasterHeight = 3508
)

// Bounds is the approximate pixel bounding box of the product table on
// the rasterized page.
type Bounds struct {
	X      int
	Y      int
	Width  int
	Height int
}

// DefaultTableBounds fits the supported supplier layouts.
func DefaultTableBounds() Bounds {
	return Bounds{X: 50, Y: 200, Width: 500, Height: 600}
}

const (
	// Column 0 holds the product-identifying images: a fixed-size cell
	// with a per-row vertical stride.
	imageCellOffsetX = 20
	imageCellOffsetY = 120
	imageCellWidth   = 120
	imageCellHeight  = 60
	imageRowStride   = 80

	// Remaining columns are a three-way horizontal split of the bounds.
	textColMargin    = 50
	textHeaderOffset = 100
	textCellHeight   = 40
)

// CellRegion computes the pixel rectangle of a table cell from its row and
// column index and the table bounds.
func CellRegion(rowIndex, colIndex int, b Bounds) image.Rectangle {
	if colIndex == 0 {
		x := b.X + imageCellOffsetX
		y := b.Y + imageCellOffsetY + rowIndex*imageRowStride
		return image.Rect(x, y, x+imageCellWidth, y+imageCellHeight)
	}

	adjX := b.X + textColMargin
	adjY := b.Y + textHeaderOffset
	adjW := b.Width - textColMargin*2
	cellW := adjW / 3

	x := adjX + colIndex*cellW
	y := adjY + rowIndex*textCellHeight
	return image.Rect(x, y, x+cellW, y+textCellHeight)
}
