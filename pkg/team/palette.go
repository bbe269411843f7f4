package team

import (
	"image"
	"image/color"
	"image/color/palette"
	"sort"
)

//Palette is a player's shirt colors, most frequent first
type Palette []color.RGBA

//webSafe is the 216 colors web safe palette, index 36r + 6g + b
var webSafe = color.Palette(palette.WebSafe)

//TorsoRegion returns the part of a player box used for colors: the center 40%
//of the width and a band around the upper third of the height, which keeps
//most of the background, shorts and limbs out
func TorsoRegion(box image.Rectangle) image.Rectangle {
	w, h := box.Dx(), box.Dy()
	x1 := max(w/2-w/5, 1)
	x2 := w/2 + w/5
	y1 := max(h/3-h/5, 1)
	y2 := h/3 + h/5
	return image.Rect(box.Min.X+x1, box.Min.Y+y1, box.Min.X+x2, box.Min.Y+y2)
}

//ExtractPalette returns up to k colors of the player inside box, ranked by
//pixel count after quantization to the web safe palette. Only the torso region
//of the box (clipped to the image) is sampled; an empty region gives an empty palette.
func ExtractPalette(img image.Image, box image.Rectangle, k int) Palette {
	if img == nil || k <= 0 {
		return Palette{}
	}

	box = box.Intersect(img.Bounds())
	region := TorsoRegion(box).Intersect(box)
	if region.Empty() {
		return Palette{}
	}

	counts := make([]int, len(webSafe))
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			counts[webSafe.Index(img.At(x, y))]++
		}
	}

	present := make([]int, 0, len(counts))
	for idx, n := range counts {
		if n > 0 {
			present = append(present, idx)
		}
	}
	sort.SliceStable(present, func(i, j int) bool {
		return counts[present[i]] > counts[present[j]]
	})

	if len(present) > k {
		present = present[:k]
	}

	res := make(Palette, len(present))
	for i, idx := range present {
		res[i] = webSafe[idx].(color.RGBA)
	}
	return res
}
