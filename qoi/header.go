package qoi

import (
	"encoding/binary"
	"fmt"
)

// Header describes a QOI image. It is stored as the first HeaderSize bytes
// of every stream.
type Header struct {
	Width      uint32
	Height     uint32
	Channels   uint8
	Colorspace uint8
}

// PixelCount returns Width*Height.
func (h Header) PixelCount() int {
	return int(uint64(h.Width) * uint64(h.Height))
}

// Validate reports whether h can be written or decoded.
func (h Header) Validate() error {
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, h.Width, h.Height)
	}
	if uint64(h.Width)*uint64(h.Height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidDimensions, h.Width, h.Height, MaxPixels)
	}
	if h.Channels != ChannelsRGB && h.Channels != ChannelsRGBA {
		return fmt.Errorf("%w: got %d", ErrInvalidChannels, h.Channels)
	}
	if h.Colorspace != ColorspaceSRGB && h.Colorspace != ColorspaceLinear {
		return fmt.Errorf("%w: got %d", ErrInvalidColorspace, h.Colorspace)
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h Header) MarshalBinary() ([]byte, error) {
	b, err := WriteHeader(h.Width, h.Height, h.Channels, h.Colorspace)
	if err != nil {
		return nil, err
	}
	return b[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (h *Header) UnmarshalBinary(data []byte) error {
	hdr, err := ReadHeader(data)
	if err != nil {
		return err
	}
	*h = hdr
	return nil
}

// WriteHeader returns the serialized header for an image of the given
// geometry.
func WriteHeader(width, height uint32, channels, colorspace uint8) ([HeaderSize]byte, error) {
	var b [HeaderSize]byte

	h := Header{Width: width, Height: height, Channels: channels, Colorspace: colorspace}
	if err := h.Validate(); err != nil {
		return b, err
	}

	putHeader(b[:], h)
	return b, nil
}

func putHeader(b []byte, h Header) {
	copy(b[0:4], Magic)
	binary.BigEndian.PutUint32(b[4:8], h.Width)
	binary.BigEndian.PutUint32(b[8:12], h.Height)
	b[12] = h.Channels
	b[13] = h.Colorspace
}

// ReadHeader parses the header at the start of data. Only the first
// HeaderSize bytes are inspected.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedInput, len(data), HeaderSize)
	}
	if string(data[:4]) != Magic {
		return Header{}, fmt.Errorf("%w: %q", ErrBadMagic, data[:4])
	}

	h := Header{
		Width:      binary.BigEndian.Uint32(data[4:8]),
		Height:     binary.BigEndian.Uint32(data[8:12]),
		Channels:   data[12],
		Colorspace: data[13],
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}

	return h, nil
}
