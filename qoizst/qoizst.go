// Package qoizst wraps QOI streams in a zstd frame. QOI leaves a good deal
// of redundancy in the chunk stream which a general purpose compressor can
// still remove; the resulting files use the .qoi.zst extension.
//
// Importing the package registers the "qoi.zst" format with the image
// package.
package qoizst

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/LukiDS/qoi/qoi"
)

// Magic is the zstd frame magic number, little-endian 0xFD2FB528.
const Magic = "\x28\xb5\x2f\xfd"

// maxDecodedSize bounds the memory a single frame may decode to: the
// largest QOI stream for MaxPixels RGBA pixels.
const maxDecodedSize = qoi.HeaderSize + qoi.MaxPixels*5 + 8

// DefaultLevel is the level used by Encode.
const DefaultLevel = zstd.SpeedBetterCompression

var encPools [zstd.SpeedBestCompression + 1]sync.Pool

var decPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

func init() {
	for i := range encPools {
		level := zstd.EncoderLevel(i)
		if level < zstd.SpeedFastest {
			continue
		}
		encPools[i].New = func() any {
			return mustNewZstdEncoder(level)
		}
	}

	image.RegisterFormat("qoi.zst", Magic, Decode, DecodeConfig)
}

func mustNewZstdEncoder(level zstd.EncoderLevel) *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(level),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderMaxMemory(maxDecodedSize),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

// IsCompressed reports whether data starts with a zstd frame.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

// Compress wraps the QOI stream data in a zstd frame. The header of data is
// validated first so that only QOI streams end up in .qoi.zst files.
func Compress(data []byte, level zstd.EncoderLevel) ([]byte, error) {
	if _, err := qoi.ReadHeader(data); err != nil {
		return nil, err
	}
	if level < zstd.SpeedFastest || level > zstd.SpeedBestCompression {
		return nil, fmt.Errorf("qoizst: unsupported level %d", level)
	}

	enc := encPools[level].Get().(*zstd.Encoder)
	out := enc.EncodeAll(data, nil)
	encPools[level].Put(enc)

	return out, nil
}

// Decompress returns the QOI stream stored in a zstd frame. Data that is
// not compressed is returned unchanged.
func Decompress(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}

	dec := decPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, nil)
	decPool.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}

	if _, err := qoi.ReadHeader(out); err != nil {
		return nil, err
	}

	return out, nil
}

// Encode writes m to w as a zstd compressed QOI stream.
func Encode(w io.Writer, m image.Image, o *qoi.Options) error {
	var buf bytes.Buffer
	if err := qoi.EncodeWithOptions(&buf, m, o); err != nil {
		return err
	}

	out, err := Compress(buf.Bytes(), DefaultLevel)
	if err != nil {
		return err
	}

	_, err = w.Write(out)
	return err
}

// Decode reads a QOI image from r, which may or may not be zstd
// compressed.
func Decode(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(len(Magic))
	if string(magic) != Magic {
		return qoi.Decode(br)
	}

	dec := decPool.Get().(*zstd.Decoder)
	defer decPool.Put(dec)

	if err := dec.Reset(br); err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	defer dec.Reset(nil)

	return qoi.Decode(dec)
}

// DecodeConfig returns the dimensions of a possibly compressed QOI image
// without decoding the pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(len(Magic))
	if string(magic) != Magic {
		return qoi.DecodeConfig(br)
	}

	dec := decPool.Get().(*zstd.Decoder)
	defer decPool.Put(dec)

	if err := dec.Reset(br); err != nil {
		return image.Config{}, fmt.Errorf("zstd decode: %w", err)
	}
	defer dec.Reset(nil)

	return qoi.DecodeConfig(dec)
}
