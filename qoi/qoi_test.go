package qoi

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"math/rand"
	"testing"
)

/*
	Utils, Stubs
*/

func generateHeader(t testing.TB, h Header) []byte {
	t.Helper()

	b := make([]byte, HeaderSize)
	putHeader(b, h)

	return b
}

// generateStream builds a stream from raw chunk bytes without validating
// the header, so that broken headers can be tested too.
func generateStream(t testing.TB, h Header, chunks []byte) []byte {
	t.Helper()

	data := generateHeader(t, h)
	data = append(data, chunks...)
	data = append(data, qoiEndMarker[:]...)

	return data
}

func generateStreamWithoutPadding(t testing.TB, h Header, chunks []byte) []byte {
	t.Helper()

	return append(generateHeader(t, h), chunks...)
}

func generateReaderStub(t testing.TB, h Header, chunks []byte) io.Reader {
	t.Helper()

	return bytes.NewReader(generateStream(t, h, chunks))
}

func generateImageStub(t testing.TB, width, height int, testdata []byte) *image.NRGBA {
	t.Helper()

	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	m.Pix = testdata

	return m
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{r, g, b, 255}
}

func repeat(px color.NRGBA, n int) []color.NRGBA {
	pix := make([]color.NRGBA, n)
	for i := range pix {
		pix[i] = px
	}
	return pix
}

// testPixels returns n pixels that exercise every chunk kind: runs of all
// lengths, revisits of earlier colors, small and medium deltas and noise.
func testPixels(rnd *rand.Rand, n int, alpha bool) []color.NRGBA {
	palette := make([]color.NRGBA, 12)
	for i := range palette {
		palette[i] = color.NRGBA{uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), 255}
		if alpha && i%3 == 0 {
			palette[i].A = uint8(rnd.Intn(256))
		}
	}

	pix := make([]color.NRGBA, 0, n)
	prev := color.NRGBA{0, 0, 0, 255}
	for len(pix) < n {
		px := prev
		switch rnd.Intn(6) {
		case 0:
			for k := rnd.Intn(130); k > 0 && len(pix) < n-1; k-- {
				pix = append(pix, prev)
			}
		case 1:
			px = palette[rnd.Intn(len(palette))]
		case 2:
			px.R += uint8(rnd.Intn(4)) - 2
			px.G += uint8(rnd.Intn(4)) - 2
			px.B += uint8(rnd.Intn(4)) - 2
		case 3:
			dg := uint8(rnd.Intn(64)) - 32
			px.G += dg
			px.R += dg + uint8(rnd.Intn(16)) - 8
			px.B += dg + uint8(rnd.Intn(16)) - 8
		case 4:
			px = color.NRGBA{uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), px.A}
		case 5:
			if alpha {
				px.A = uint8(rnd.Intn(256))
			}
		}
		pix = append(pix, px)
		prev = px
	}

	return pix
}

func testImage(rnd *rand.Rand, width, height int, alpha bool) (Header, []color.NRGBA) {
	h := Header{Width: uint32(width), Height: uint32(height), Channels: ChannelsRGB, Colorspace: ColorspaceSRGB}
	if alpha {
		h.Channels = ChannelsRGBA
	}
	return h, testPixels(rnd, width*height, alpha)
}
