package ean_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/invoice-extractor/internal/ean"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{name: "valid EAN-13", code: "4006381333931", valid: true},
		{name: "valid EAN-8", code: "96385074", valid: true},
		{name: "valid 12-digit", code: "123456789014", valid: true},
		{name: "wrong check digit", code: "4006381333930", valid: false},
		{name: "wrong check digit EAN-8", code: "12345670", valid: false},
		{name: "too short", code: "1234567", valid: false},
		{name: "too long", code: "12345678901234", valid: false},
		{name: "non-digit content", code: "40063813339a1", valid: false},
		{name: "empty", code: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ean.Validate(tt.code))
		})
	}
}

func TestValidate_SingleDigitMutations(t *testing.T) {
	const code = "4006381333931"

	for i := 0; i < len(code); i++ {
		for d := byte('0'); d <= '9'; d++ {
			if code[i] == d {
				continue
			}
			mutated := code[:i] + string(d) + code[i+1:]
			assert.False(t, ean.Validate(mutated), "mutation %s should fail", mutated)
		}
	}
}

func TestExtractCandidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "clean EAN-13", text: "4006381333931", want: "4006381333931"},
		{name: "embedded in noise", text: "foo 4006381333931 bar", want: "4006381333931"},
		{name: "shorter run checked first", text: "4006381333931 96385074", want: "96385074"},
		{name: "invalid run skipped", text: "4006381333930 96385074", want: "96385074"},
		{name: "no digit runs", text: "sin códigos aquí", want: ""},
		{name: "wrong length runs only", text: "12345 123456789", want: ""},
		{name: "empty input", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ean.ExtractCandidate(tt.text))
		})
	}
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "GESTINLIB_0", ean.Placeholder("GESTINLIB", 0))
	assert.Equal(t, "GESTINLIB_7", ean.Placeholder("GESTINLIB", 7))
}

func TestCellRegion_ImageColumn(t *testing.T) {
	b := ean.DefaultTableBounds()

	r0 := ean.CellRegion(0, 0, b)
	assert.Equal(t, image.Rect(70, 320, 190, 380), r0)

	// Each row moves the image cell down by the row stride.
	r1 := ean.CellRegion(1, 0, b)
	assert.Equal(t, r0.Min.Y+80, r1.Min.Y)
	assert.Equal(t, r0.Min.X, r1.Min.X)
	assert.Equal(t, r0.Dx(), r1.Dx())
	assert.Equal(t, r0.Dy(), r1.Dy())
}

func TestCellRegion_TextColumns(t *testing.T) {
	b := ean.DefaultTableBounds()

	// Text columns split the margin-adjusted width three ways.
	r1 := ean.CellRegion(0, 1, b)
	r2 := ean.CellRegion(0, 2, b)
	assert.Equal(t, r1.Dx(), r2.Dx())
	assert.Equal(t, r1.Max.X, r2.Min.X)
	assert.Equal(t, r1.Min.Y, r2.Min.Y)

	// Rows advance by the text cell height.
	below := ean.CellRegion(1, 1, b)
	assert.Equal(t, r1.Min.Y+40, below.Min.Y)
}
