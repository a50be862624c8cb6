package transform

import (
	"strings"

	"geoload/internal/geometry"
	"geoload/pkg/document"
)

// WKTRow converts rows of a CSV whose wktIndex column carries WKT into
// geometry-bearing documents.
type WKTRow struct {
	// WKTIndex is the position of the WKT column within the header.
	WKTIndex int

	// GeometryField is the document key receiving the GeoJSON geometry.
	GeometryField string

	// Reprojector transforms parsed coordinates to the destination CRS.
	Reprojector *geometry.Reprojector
}

// Document builds the document for one record. ok is false when the record's
// WKT cell is empty or missing: such rows are skipped entirely rather than
// emitted with a null geometry. Any WKT that fails to parse or repair aborts
// the run via the returned error.
//
// All non-geometry columns are coerced with the WKT loader's extended null
// tokens; the WKT column itself is excluded from the output.
func (w WKTRow) Document(header []string, rec []string) (document.Doc, bool, error) {
	var raw string
	if w.WKTIndex < len(rec) {
		raw = rec[w.WKTIndex]
	}
	if strings.TrimSpace(raw) == "" {
		return nil, false, nil
	}

	g, err := geometry.ParseWKT(raw)
	if err != nil {
		return nil, false, err
	}
	g, err = w.Reprojector.Apply(g)
	if err != nil {
		return nil, false, err
	}
	gj, err := geometry.GeoJSON(g)
	if err != nil {
		return nil, false, err
	}

	doc := document.Doc{{Key: w.GeometryField, Value: gj}}
	for i, key := range header {
		if i == w.WKTIndex {
			continue
		}
		var v any
		if i < len(rec) {
			v = CoerceWKTColumn(rec[i])
		}
		doc = document.Set(doc, key, v)
	}
	return doc, true, nil
}
