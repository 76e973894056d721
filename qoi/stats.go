package qoi

import (
	"fmt"
	"image/color"
)

type chunkKind int

const (
	kindIndex chunkKind = iota
	kindDiff
	kindLuma
	kindRun
	kindRGB
	kindRGBA
)

// Stats describes the chunks making up a QOI stream.
type Stats struct {
	Header Header

	Index int
	Diff  int
	Luma  int
	Run   int
	RGB   int
	RGBA  int

	// ChunkBytes is the size of the chunk stream, without header and end
	// marker.
	ChunkBytes int
}

func (s *Stats) add(k chunkKind, size int) {
	if s == nil {
		return
	}

	switch k {
	case kindIndex:
		s.Index++
	case kindDiff:
		s.Diff++
	case kindLuma:
		s.Luma++
	case kindRun:
		s.Run++
	case kindRGB:
		s.RGB++
	case kindRGBA:
		s.RGBA++
	}
	s.ChunkBytes += size
}

// Chunks returns the total number of chunks.
func (s Stats) Chunks() int {
	return s.Index + s.Diff + s.Luma + s.Run + s.RGB + s.RGBA
}

// Ratio returns the encoded size relative to the raw pixel data.
func (s Stats) Ratio() float64 {
	raw := s.Header.PixelCount() * int(s.Header.Channels)
	if raw == 0 {
		return 0
	}
	return float64(HeaderSize+s.ChunkBytes+len(qoiEndMarker)) / float64(raw)
}

func (s Stats) String() string {
	return fmt.Sprintf("%dx%d ch=%d cs=%d chunks=%d index=%d diff=%d luma=%d run=%d rgb=%d rgba=%d bytes=%d ratio=%.3f",
		s.Header.Width, s.Header.Height, s.Header.Channels, s.Header.Colorspace,
		s.Chunks(), s.Index, s.Diff, s.Luma, s.Run, s.RGB, s.RGBA, s.ChunkBytes, s.Ratio())
}

// Analyze decodes data without keeping the pixels and counts its chunks.
func Analyze(data []byte) (Stats, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{Header: h}
	d := newDecoder(data)
	d.stats = &s

	if err := d.decodeAll(h, func(int, color.NRGBA) {}); err != nil {
		return Stats{}, err
	}

	return s, nil
}
