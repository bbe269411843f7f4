package team

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func filled(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func paint(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func TestTorsoRegion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, image.Rect(30, 26, 70, 106), TorsoRegion(image.Rect(0, 0, 100, 200)))
	assert.Equal(t, image.Rect(230, 126, 270, 206), TorsoRegion(image.Rect(200, 100, 300, 300)))
	assert.True(t, TorsoRegion(image.Rect(10, 20, 13, 24)).Empty())
}

func TestExtractPalette_WebSafeLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   color.RGBA
		want color.RGBA
	}{
		{"rounds down below the midpoint", color.RGBA{R: 25, G: 25, B: 25, A: 255}, color.RGBA{A: 255}},
		{"rounds up above the midpoint", color.RGBA{R: 26, G: 26, B: 26, A: 255}, color.RGBA{R: 51, G: 51, B: 51, A: 255}},
		{"white", color.RGBA{R: 255, G: 255, B: 255, A: 255}, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"channels independently", color.RGBA{R: 60, G: 110, B: 140, A: 255}, color.RGBA{R: 51, G: 102, B: 153, A: 255}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img := filled(image.Rect(0, 0, 20, 20), tc.in)
			assert.Equal(t, Palette{tc.want}, ExtractPalette(img, img.Bounds(), 3))
		})
	}
}

func TestExtractPalette(t *testing.T) {
	t.Parallel()

	grass := color.RGBA{G: 128, A: 255}
	shirt := color.RGBA{R: 250, G: 10, B: 10, A: 255}
	stripe := color.RGBA{R: 10, G: 10, B: 250, A: 255}

	t.Run("ranks torso colors by frequency", func(t *testing.T) {
		t.Parallel()
		img := filled(image.Rect(0, 0, 100, 200), grass)
		paint(img, image.Rect(30, 26, 70, 106), shirt)
		paint(img, image.Rect(30, 26, 70, 36), stripe)

		got := ExtractPalette(img, img.Bounds(), 3)
		assert.Equal(t, Palette{{R: 255, A: 255}, {B: 255, A: 255}}, got)
	})

	t.Run("keeps only the k most frequent", func(t *testing.T) {
		t.Parallel()
		img := filled(image.Rect(0, 0, 100, 200), grass)
		paint(img, image.Rect(30, 26, 70, 106), shirt)
		paint(img, image.Rect(30, 26, 70, 36), stripe)

		got := ExtractPalette(img, img.Bounds(), 1)
		assert.Equal(t, Palette{{R: 255, A: 255}}, got)
	})

	t.Run("box partially outside the frame", func(t *testing.T) {
		t.Parallel()
		img := filled(image.Rect(0, 0, 50, 50), shirt)
		got := ExtractPalette(img, image.Rect(-50, -50, 50, 50), 2)
		assert.Equal(t, Palette{{R: 255, A: 255}}, got)
	})

	t.Run("box outside the frame", func(t *testing.T) {
		t.Parallel()
		img := filled(image.Rect(0, 0, 50, 50), shirt)
		assert.Empty(t, ExtractPalette(img, image.Rect(100, 100, 150, 200), 2))
	})

	t.Run("no image", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, ExtractPalette(nil, image.Rect(0, 0, 10, 10), 2))
	})
}
