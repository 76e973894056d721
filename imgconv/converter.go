package imgconv

import (
	"image"
	"image/color"
	"image/draw"
)

// ToNRGBA converts any image m to an *image.NRGBA image.
// Any Image may be converted, but images that are not image.NRGBA might be converted lossily.
func ToNRGBA(m image.Image) *image.NRGBA {
	if img, ok := m.(*image.NRGBA); ok {
		return img
	}

	img := image.NewNRGBA(m.Bounds())
	draw.Draw(img, img.Bounds(), m, m.Bounds().Min, draw.Src)

	return img
}

// Pixels returns the pixels of m in raster order, row-major starting at
// the top left of m.Bounds().
func Pixels(m *image.NRGBA) []color.NRGBA {
	b := m.Bounds()
	pix := make([]color.NRGBA, 0, b.Dx()*b.Dy())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			s := row[4*x : 4*x+4 : 4*x+4]
			pix = append(pix, color.NRGBA{s[0], s[1], s[2], s[3]})
		}
	}

	return pix
}
