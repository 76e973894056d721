// Command qoiconv converts images to and from the QOI format.
//
//	qoiconv [flags] <input> <output>
//
// The output format follows the output extension: .qoi, .qoi.zst or .png.
// Inputs may be PNG, JPEG, GIF, QOI or zstd compressed QOI.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/LukiDS/qoi/qoi"
	"github.com/LukiDS/qoi/qoizst"
)

type config struct {
	channels   uint
	colorspace uint
	level      int
	zstd       bool
	stats      bool
	verbose    bool

	in, out string
}

func parseFlags(args []string) (config, error) {
	var c config

	fs := flag.NewFlagSet("qoiconv", flag.ContinueOnError)
	fs.UintVar(&c.channels, "channels", uint(qoi.ChannelsRGBA), "channels written to the header (3 or 4)")
	fs.UintVar(&c.colorspace, "colorspace", uint(qoi.ColorspaceSRGB), "colorspace tag (0 = sRGB, 1 = linear)")
	fs.BoolVar(&c.zstd, "zstd", false, "wrap the output in a zstd frame (implied by a .qoi.zst output)")
	fs.IntVar(&c.level, "level", int(qoizst.DefaultLevel), "zstd level, 1 (fastest) to 4 (best)")
	fs.BoolVar(&c.stats, "stats", false, "print chunk statistics of the QOI stream")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), "Usage: qoiconv [flags] <input> <output>\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return c, errors.New("expected an input and an output path")
	}
	c.in, c.out = fs.Arg(0), fs.Arg(1)

	if c.channels > 255 || c.colorspace > 255 {
		return c, errors.New("channels and colorspace must fit in a byte")
	}
	if strings.HasSuffix(strings.ToLower(c.out), ".qoi.zst") {
		c.zstd = true
	}

	return c, nil
}

func main() {
	c, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(c, logger); err != nil {
		logger.Error("conversion failed", "in", c.in, "out", c.out, "err", err)
		os.Exit(1)
	}
}

func run(c config, logger *slog.Logger) error {
	src, err := os.ReadFile(c.in)
	if err != nil {
		return err
	}

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return fmt.Errorf("decode %s: %w", c.in, err)
	}
	logger.Debug("decoded input", "format", format, "bounds", img.Bounds(), "bytes", len(src))

	if c.stats && (format == "qoi" || format == "qoi.zst") {
		if err := logStats(logger, c.in, src); err != nil {
			return err
		}
	}

	out, err := encode(c, img)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.out, err)
	}

	if c.stats && !strings.HasSuffix(strings.ToLower(c.out), ".png") {
		if err := logStats(logger, c.out, out); err != nil {
			return err
		}
	}

	if err := os.WriteFile(c.out, out, 0o644); err != nil {
		return err
	}
	logger.Info("converted", "in", c.in, "out", c.out, "bytes", len(out))

	return nil
}

func encode(c config, img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	if strings.HasSuffix(strings.ToLower(c.out), ".png") {
		err := png.Encode(&buf, img)
		return buf.Bytes(), err
	}

	opts := &qoi.Options{Channels: uint8(c.channels), Colorspace: uint8(c.colorspace)}
	if err := qoi.EncodeWithOptions(&buf, img, opts); err != nil {
		return nil, err
	}
	if !c.zstd {
		return buf.Bytes(), nil
	}

	return qoizst.Compress(buf.Bytes(), zstd.EncoderLevel(c.level))
}

func logStats(logger *slog.Logger, name string, data []byte) error {
	raw, err := qoizst.Decompress(data)
	if err != nil {
		return err
	}

	s, err := qoi.Analyze(raw)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", name, err)
	}

	logger.Info("qoi stream",
		"file", name,
		"width", s.Header.Width,
		"height", s.Header.Height,
		"channels", s.Header.Channels,
		"colorspace", s.Header.Colorspace,
		"index", s.Index,
		"diff", s.Diff,
		"luma", s.Luma,
		"run", s.Run,
		"rgb", s.RGB,
		"rgba", s.RGBA,
		"ratio", fmt.Sprintf("%.3f", s.Ratio()),
		"compressed", qoizst.IsCompressed(data),
	)
	return nil
}
