// Package qoi implements a lossless encoder and decoder for the QOI
// ("Quite OK Image") format.
//
// The core works on raw pixel buffers (EncodePixels, DecodePixels); Encode,
// Decode and DecodeConfig adapt it to the image package.
package qoi

import (
	"image"
	"image/color"
)

const (
	// MaxPixels is the largest Width*Height accepted by either side. At
	// 5 bytes per pixel in the worst case it keeps an encoded stream
	// below 2 GB.
	MaxPixels = 400_000_000

	// Magic opens every QOI stream.
	Magic = "qoif"

	// HeaderSize is the length of the encoded Header in bytes.
	HeaderSize = 14

	qoiCacheSize  = 64
	qoiMaxRunSize = 62
)

const (
	ChannelsRGB  uint8 = 3
	ChannelsRGBA uint8 = 4

	ColorspaceSRGB   uint8 = 0 // sRGB with linear alpha
	ColorspaceLinear uint8 = 1 // all channels linear
)

var qoiEndMarker = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}

const (
	opINDEX uint8 = 0b00000000
	opDIFF  uint8 = 0b01000000
	opLUMA  uint8 = 0b10000000
	opRUN   uint8 = 0b11000000
	opRGB   uint8 = 0b11111110
	opRGBA  uint8 = 0b11111111
)

const (
	maskOP uint8 = 0b11000000
	mask6  uint8 = 0b00111111
	mask4  uint8 = 0b00001111
	mask2  uint8 = 0b00000011
)

// the previous pixel both sides start from
var startPixel = color.NRGBA{0, 0, 0, 255}

func init() {
	image.RegisterFormat("qoi", Magic, Decode, DecodeConfig)
}
