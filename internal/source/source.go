// Package source opens local input files for the loaders, layering gzip
// decompression (by .gz suffix) and charset decoding over the raw file.
package source

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Open opens path for reading. Files whose name ends in .gz (any case) are
// transparently decompressed, and when charset names an encoding other than
// UTF-8 the stream is decoded to UTF-8 via the IANA charset registry.
// Closing the returned ReadCloser closes every layer, the file included.
func Open(path, charset string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var r io.Reader = f
	closers := []io.Closer{f}

	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open %s: gzip: %w", path, err)
		}
		r = zr
		closers = append(closers, zr)
	}

	if dec, err := decoderFor(charset); err != nil {
		closeAll(closers)
		return nil, err
	} else if dec != nil {
		r = transform.NewReader(r, dec)
	}

	return &layered{r: r, closers: closers}, nil
}

// decoderFor resolves a charset name to a transformer, or nil for UTF-8 (no
// decoding needed).
func decoderFor(charset string) (transform.Transformer, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	switch name {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", charset)
	}
	return enc.NewDecoder(), nil
}

// layered is an io.ReadCloser whose Close releases each layer innermost
// first.
type layered struct {
	r       io.Reader
	closers []io.Closer
}

func (l *layered) Read(p []byte) (int, error) { return l.r.Read(p) }

func (l *layered) Close() error {
	var first error
	for i := len(l.closers) - 1; i >= 0; i-- {
		if err := l.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func closeAll(cs []io.Closer) {
	for i := len(cs) - 1; i >= 0; i-- {
		cs[i].Close()
	}
}
