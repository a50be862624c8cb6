// Package csv streams records out of a headered CSV file. The reader is a
// lazy, non-restartable pull iterator: each Next call decodes exactly one
// record, so peak memory stays independent of file size. Quoted fields may
// span lines; embedded newlines are part of the field value, never record
// separators.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"geoload/internal/transform"
)

// ErrMissingHeader is returned when the input has no header row (empty
// input, or nothing but blank lines).
var ErrMissingHeader = errors.New("csv: missing header row")

// MissingFieldError reports a required column absent from the header.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("csv: column %q not found in header", e.Field)
}

const utf8BOM = "\uFEFF"

// Reader yields CSV records keyed by the header row.
type Reader struct {
	cr     *csv.Reader
	header []string
}

// NewReader wraps r and consumes the header line. The first non-empty line
// is the header (a UTF-8 BOM on the first cell is stripped); each header
// cell is passed through keys, which normalizes and caches names when
// normalization is enabled. Returns ErrMissingHeader when no header exists.
func NewReader(r io.Reader, keys *transform.KeyMapper) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows narrower/wider than the header are tolerated
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	header := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = keys.Map(h)
	}
	return &Reader{cr: cr, header: header}, nil
}

// Header returns the resolved column keys in file order.
func (r *Reader) Header() []string { return r.header }

// FieldIndex locates name within the header.
func (r *Reader) FieldIndex(name string) (int, error) {
	for i, h := range r.header {
		if h == name {
			return i, nil
		}
	}
	return 0, &MissingFieldError{Field: name}
}

// Next returns the next record's cells in column order, or io.EOF after the
// last record. The returned slice is owned by the caller.
func (r *Reader) Next() ([]string, error) {
	rec, err := r.cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("csv: read record: %w", err)
	}
	out := make([]string, len(rec))
	copy(out, rec)
	return out, nil
}
