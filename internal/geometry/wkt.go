// Package geometry wraps the simplefeatures and wgs84 libraries behind the
// three operations the WKT loader needs: parse-and-repair WKT, reproject
// between EPSG reference systems, and serialize to the GeoJSON object form.
package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/peterstace/simplefeatures/geom"
)

// ParseError reports WKT that could not be parsed, or that parsed to an
// invalid geometry the repair step could not fix. It is fatal for the whole
// load; the WKT loader never skips a bad geometry.
type ParseError struct {
	WKT string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid WKT geometry %q: %v", truncate(e.WKT, 80), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseWKT parses a WKT string into a geometry. A geometry that parses but
// fails validation (typically a self-intersecting ring) is repaired by
// unioning it with itself, the same fix as a zero-width buffer. If the WKT
// does not parse, or the repaired geometry is still invalid, ParseWKT
// returns a *ParseError.
func ParseWKT(s string) (geom.Geometry, error) {
	g, err := geom.UnmarshalWKT(s)
	if err == nil {
		return g, nil
	}

	// UnmarshalWKT validates by default, so err covers both syntax errors
	// and validity errors. Re-parse without validation to tell them apart.
	raw, rawErr := geom.UnmarshalWKT(s, geom.NoValidate{})
	if rawErr != nil {
		return geom.Geometry{}, &ParseError{WKT: s, Err: rawErr}
	}

	repaired, unionErr := geom.Union(raw, raw)
	if unionErr != nil {
		return geom.Geometry{}, &ParseError{WKT: s, Err: fmt.Errorf("repair: %w", unionErr)}
	}
	if vErr := repaired.Validate(); vErr != nil {
		return geom.Geometry{}, &ParseError{WKT: s, Err: fmt.Errorf("unrepairable: %w", vErr)}
	}
	return repaired, nil
}

// GeoJSON converts g to the GeoJSON geometry object form: a map with "type"
// and "coordinates" keys, ready for insertion and 2dsphere indexing.
func GeoJSON(g geom.Geometry) (map[string]any, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode geometry: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode geometry: %w", err)
	}
	return m, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
