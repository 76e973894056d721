package qoi

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
)

type decoder struct {
	data  []byte
	pos   int
	cache colorCache
	prev  color.NRGBA
	run   int
	stats *Stats
}

// newDecoder returns a decoder positioned at the first chunk of data.
func newDecoder(data []byte) *decoder {
	return &decoder{
		data: data,
		pos:  HeaderSize,
		prev: startPixel,
	}
}

func (d *decoder) need(n int) error {
	if len(d.data)-d.pos < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, %d left", ErrUnexpectedEndOfStream, n, d.pos, len(d.data)-d.pos)
	}
	return nil
}

// decodePixel returns the next pixel of the image.
func (d *decoder) decodePixel() (color.NRGBA, error) {
	if d.run > 0 {
		d.run--
		return d.prev, nil
	}

	if err := d.need(1); err != nil {
		return color.NRGBA{}, err
	}
	b1 := d.data[d.pos]
	d.pos++

	switch {
	case b1 == opRGB:
		if err := d.need(3); err != nil {
			return color.NRGBA{}, err
		}
		d.prev.R = d.data[d.pos]
		d.prev.G = d.data[d.pos+1]
		d.prev.B = d.data[d.pos+2]
		d.pos += 3
		d.stats.add(kindRGB, 4)

	case b1 == opRGBA:
		if err := d.need(4); err != nil {
			return color.NRGBA{}, err
		}
		d.prev.R = d.data[d.pos]
		d.prev.G = d.data[d.pos+1]
		d.prev.B = d.data[d.pos+2]
		d.prev.A = d.data[d.pos+3]
		d.pos += 4
		d.stats.add(kindRGBA, 5)

	case b1&maskOP == opINDEX:
		d.prev = d.cache.lookup(b1 & mask6)
		d.stats.add(kindIndex, 1)

	case b1&maskOP == opDIFF:
		d.prev.R += ((b1 >> 4) & mask2) - 2
		d.prev.G += ((b1 >> 2) & mask2) - 2
		d.prev.B += ((b1 >> 0) & mask2) - 2
		d.stats.add(kindDiff, 1)

	case b1&maskOP == opLUMA:
		if err := d.need(1); err != nil {
			return color.NRGBA{}, err
		}
		b2 := d.data[d.pos]
		d.pos++

		vg := (b1 & mask6) - 32

		d.prev.R += vg - 8 + ((b2 >> 4) & mask4)
		d.prev.G += vg
		d.prev.B += vg - 8 + ((b2 >> 0) & mask4)
		d.stats.add(kindLuma, 2)

	default: // opRUN
		// the run repeats a pixel that is already cached, so no insert
		d.run = int(b1 & mask6)
		d.stats.add(kindRun, 1)
		return d.prev, nil
	}

	d.cache.insert(d.prev)
	return d.prev, nil
}

// checkEndMarker verifies that the end marker directly follows the last
// chunk. Anything after the marker is not looked at.
func (d *decoder) checkEndMarker() error {
	if len(d.data)-d.pos < len(qoiEndMarker) {
		return fmt.Errorf("%w: %d bytes after the last chunk", ErrTrailingDataMismatch, len(d.data)-d.pos)
	}
	if !bytes.Equal(d.data[d.pos:d.pos+len(qoiEndMarker)], qoiEndMarker[:]) {
		return fmt.Errorf("%w: got % x", ErrTrailingDataMismatch, d.data[d.pos:d.pos+len(qoiEndMarker)])
	}
	d.pos += len(qoiEndMarker)
	return nil
}

// checkLength rejects streams too short to describe h.Width*h.Height
// pixels, before anything is allocated for them. A single chunk byte
// yields at most qoiMaxRunSize pixels.
func checkLength(data []byte, h Header) error {
	avail := uint64(0)
	if len(data) > HeaderSize {
		avail = uint64(len(data) - HeaderSize)
	}
	if uint64(h.PixelCount()) > avail*qoiMaxRunSize {
		return fmt.Errorf("%w: %d bytes cannot hold %dx%d pixels", ErrUnexpectedEndOfStream, avail, h.Width, h.Height)
	}
	return nil
}

// decodeAll decodes all pixels of h, hands each one to put in raster
// order and checks the end marker. Alpha is reported as 255 for 3 channel
// images, while the decoder state keeps the decoded value.
func (d *decoder) decodeAll(h Header, put func(pxPos int, px color.NRGBA)) error {
	opaque := h.Channels == ChannelsRGB

	for pxPos, n := 0, h.PixelCount(); pxPos < n; pxPos++ {
		px, err := d.decodePixel()
		if err != nil {
			return fmt.Errorf("pixel %d: %w", pxPos, err)
		}
		if opaque {
			px.A = 255
		}
		put(pxPos, px)
	}

	return d.checkEndMarker()
}

// DecodePixels decodes a complete QOI stream into a new pixel buffer,
// row-major with the origin at the top left.
func DecodePixels(data []byte) (Header, []color.NRGBA, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	if err := checkLength(data, h); err != nil {
		return Header{}, nil, err
	}

	pix := make([]color.NRGBA, h.PixelCount())
	if _, err := DecodePixelsInto(data, pix); err != nil {
		return Header{}, nil, err
	}

	return h, pix, nil
}

// DecodePixelsInto is like DecodePixels but writes into dst, which must
// hold exactly Width*Height pixels. On error the contents of dst are
// undefined.
func DecodePixelsInto(data []byte, dst []color.NRGBA) (Header, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return Header{}, err
	}
	if len(dst) != h.PixelCount() {
		return Header{}, fmt.Errorf("%w: buffer of %d pixels for a %dx%d image", ErrContractViolation, len(dst), h.Width, h.Height)
	}
	if err := checkLength(data, h); err != nil {
		return Header{}, err
	}

	err = newDecoder(data).decodeAll(h, func(pxPos int, px color.NRGBA) {
		dst[pxPos] = px
	})
	if err != nil {
		return Header{}, err
	}

	return h, nil
}

// readHeaderFrom reads and validates the header at the start of r.
func readHeaderFrom(r io.Reader) ([]byte, Header, error) {
	hb := make([]byte, HeaderSize)
	if n, err := io.ReadFull(r, hb); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, Header{}, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedInput, n, HeaderSize)
		}
		return nil, Header{}, err
	}

	h, err := ReadHeader(hb)
	if err != nil {
		return nil, Header{}, err
	}

	return hb, h, nil
}

// readStream reads a whole stream from r, looking at the header before
// reading the rest so that bad input is rejected early.
func readStream(r io.Reader) ([]byte, Header, error) {
	hb, h, err := readHeaderFrom(r)
	if err != nil {
		return nil, Header{}, err
	}

	buf := bytes.NewBuffer(hb)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, Header{}, err
	}

	return buf.Bytes(), h, nil
}

// DecodeConfig returns the color model and dimensions of a QOI image
// without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	_, h, err := readHeaderFrom(r)
	if err != nil {
		return image.Config{}, err
	}

	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// Decode reads a QOI image from r and returns it as an *image.NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	data, h, err := readStream(r)
	if err != nil {
		return nil, err
	}
	if err := checkLength(data, h); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(h.Width), int(h.Height)))
	err = newDecoder(data).decodeAll(h, func(pxPos int, px color.NRGBA) {
		s := img.Pix[4*pxPos : 4*pxPos+4 : 4*pxPos+4]
		s[0], s[1], s[2], s[3] = px.R, px.G, px.B, px.A
	})
	if err != nil {
		return nil, err
	}

	return img, nil
}
