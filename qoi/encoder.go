package qoi

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/LukiDS/qoi/imgconv"
)

// Options are the encoding parameters. A nil *Options means 4 channels and
// the sRGB colorspace.
type Options struct {
	// Channels is written to the header, 3 or 4. With 3 channels every
	// pixel must be fully opaque.
	Channels uint8
	// Colorspace is written to the header and otherwise not interpreted.
	Colorspace uint8
}

var defaultOptions = Options{Channels: ChannelsRGBA, Colorspace: ColorspaceSRGB}

type encoder struct {
	buf   []byte
	cache colorCache
	prev  color.NRGBA
	run   int
}

func newEncoder(dst []byte) *encoder {
	return &encoder{
		buf:  dst,
		prev: startPixel,
	}
}

// encodePixel emits the chunk for px. last must be set for the final pixel
// of the image so that a pending run is flushed.
func (e *encoder) encodePixel(px color.NRGBA, last bool) {
	if px == e.prev {
		e.run++
		if e.run == qoiMaxRunSize || last {
			e.flushRun()
		}
		return
	}

	e.flushRun()

	indexPos := hash(px)
	if e.cache.lookup(indexPos) == px {
		e.buf = append(e.buf, opINDEX|indexPos)
	} else if px.A == e.prev.A {
		vr := int8(px.R - e.prev.R)
		vg := int8(px.G - e.prev.G)
		vb := int8(px.B - e.prev.B)

		vgR := vr - vg
		vgB := vb - vg

		if vr > -3 && vr < 2 && vg > -3 && vg < 2 && vb > -3 && vb < 2 {
			e.buf = append(e.buf, opDIFF|uint8(vr+2)<<4|uint8(vg+2)<<2|uint8(vb+2))
		} else if vgR > -9 && vgR < 8 &&
			vg > -33 && vg < 32 &&
			vgB > -9 && vgB < 8 {
			e.buf = append(e.buf, opLUMA|uint8(vg+32), uint8(vgR+8)<<4|uint8(vgB+8))
		} else {
			e.buf = append(e.buf, opRGB, px.R, px.G, px.B)
		}
	} else {
		e.buf = append(e.buf, opRGBA, px.R, px.G, px.B, px.A)
	}

	e.cache.insert(px)
	e.prev = px
}

func (e *encoder) flushRun() {
	if e.run == 0 {
		return
	}
	e.buf = append(e.buf, opRUN|uint8(e.run-1))
	e.run = 0
}

// maxEncodedLen is the worst case size of an encoded image: every pixel as
// an RGB or RGBA chunk.
func maxEncodedLen(h Header) int {
	return HeaderSize + h.PixelCount()*(int(h.Channels)+1) + len(qoiEndMarker)
}

// EncodePixels encodes pix, row-major with the origin at the top left, into
// a new QOI stream described by h.
func EncodePixels(h Header, pix []color.NRGBA) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	data, err := AppendPixels(make([]byte, 0, maxEncodedLen(h)), h, pix)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// AppendPixels is like EncodePixels but appends the stream to dst.
//
// It fails with ErrContractViolation if len(pix) does not match the header
// or if h declares 3 channels and a pixel is not fully opaque. On error dst
// is returned as it was passed in.
func AppendPixels(dst []byte, h Header, pix []color.NRGBA) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return dst, err
	}
	n := h.PixelCount()
	if len(pix) != n {
		return dst, fmt.Errorf("%w: %d pixels for a %dx%d image", ErrContractViolation, len(pix), h.Width, h.Height)
	}

	orig, start := dst, len(dst)
	if need := maxEncodedLen(h); cap(dst)-start < need {
		grown := make([]byte, start, start+need)
		copy(grown, dst)
		dst = grown
	}

	dst = dst[:start+HeaderSize]
	putHeader(dst[start:], h)

	e := newEncoder(dst)
	for pxPos, px := range pix {
		if h.Channels == ChannelsRGB && px.A != 255 {
			return orig, fmt.Errorf("%w: pixel %d has alpha %d in a 3 channel image", ErrContractViolation, pxPos, px.A)
		}
		e.encodePixel(px, pxPos == n-1)
	}

	return append(e.buf, qoiEndMarker[:]...), nil
}

// Encode writes the Image m to w in QOI format with 4 channels and the sRGB
// colorspace. Any Image may be encoded, but images that are not image.NRGBA
// are converted first and might lose precision.
func Encode(w io.Writer, m image.Image) error {
	return EncodeWithOptions(w, m, nil)
}

// EncodeWithOptions writes the Image m to w in QOI format using o.
func EncodeWithOptions(w io.Writer, m image.Image, o *Options) error {
	opts := defaultOptions
	if o != nil {
		opts = *o
	}

	mw, mh := m.Bounds().Dx(), m.Bounds().Dy()
	if mw <= 0 || mh <= 0 || uint64(mw) > 1<<32-1 || uint64(mh) > 1<<32-1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, mw, mh)
	}

	h := Header{
		Width:      uint32(mw),
		Height:     uint32(mh),
		Channels:   opts.Channels,
		Colorspace: opts.Colorspace,
	}
	if err := h.Validate(); err != nil {
		return err
	}

	data, err := EncodePixels(h, imgconv.Pixels(imgconv.ToNRGBA(m)))
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}
