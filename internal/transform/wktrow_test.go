package transform

import (
	"errors"
	"reflect"
	"testing"

	"geoload/internal/geometry"
	"geoload/pkg/document"
)

func identityWKTRow(t *testing.T) WKTRow {
	t.Helper()
	rp, err := geometry.NewReprojector("EPSG:4326", "EPSG:4326")
	if err != nil {
		t.Fatalf("NewReprojector: %v", err)
	}
	return WKTRow{WKTIndex: 1, GeometryField: "geometry", Reprojector: rp}
}

/*
TestWKTRowDocument verifies the happy path: the WKT cell becomes a GeoJSON
geometry object stored first, the WKT column itself is excluded, and the
remaining columns are coerced with the extended null tokens.
*/
func TestWKTRowDocument(t *testing.T) {
	w := identityWKTRow(t)
	header := []string{"bbl", "the_geom", "owner"}

	doc, ok, err := w.Document(header, []string{"007", "POINT(30 10)", "N/A"})
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if !ok {
		t.Fatal("Document skipped a row with WKT present")
	}

	if doc[0].Key != "geometry" {
		t.Fatalf("first field = %q, want geometry", doc[0].Key)
	}
	gj, isMap := doc[0].Value.(map[string]any)
	if !isMap {
		t.Fatalf("geometry value is %T, want map", doc[0].Value)
	}
	if gj["type"] != "Point" {
		t.Fatalf("geometry type = %v, want Point", gj["type"])
	}
	coords, _ := gj["coordinates"].([]any)
	if !reflect.DeepEqual(coords, []any{float64(30), float64(10)}) {
		t.Fatalf("coordinates = %v, want [30 10]", coords)
	}

	rest := doc[1:]
	want := document.Doc{
		{Key: "bbl", Value: "007"}, // leading zero: identifier, not a number
		{Key: "owner", Value: nil}, // N/A is a null token here
	}
	if !reflect.DeepEqual(rest, want) {
		t.Fatalf("non-geometry fields = %#v, want %#v", rest, want)
	}
	if _, found := document.Get(doc, "the_geom"); found {
		t.Fatal("WKT column leaked into the document")
	}
}

/*
TestWKTRowDocument_SkipAndError verifies the two non-happy paths: an empty
or missing WKT cell skips the row without error, while unparseable WKT is a
fatal *geometry.ParseError.
*/
func TestWKTRowDocument_SkipAndError(t *testing.T) {
	w := identityWKTRow(t)
	header := []string{"bbl", "the_geom"}

	for _, rec := range [][]string{
		{"1", ""},
		{"1", "   "},
		{"1"}, // record shorter than the WKT column
	} {
		doc, ok, err := w.Document(header, rec)
		if err != nil || ok || doc != nil {
			t.Fatalf("rec %v: got (%v, %v, %v), want skip", rec, doc, ok, err)
		}
	}

	_, _, err := w.Document(header, []string{"1", "POINT(30)"})
	var pe *geometry.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *geometry.ParseError", err)
	}
}
