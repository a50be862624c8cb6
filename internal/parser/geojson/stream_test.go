package geojson

import (
	"errors"
	"strings"
	"testing"
)

// collect drains StreamFeatures into a slice for assertions.
func collect(t *testing.T, in string, ndjson bool) ([]map[string]any, error) {
	t.Helper()
	var feats []map[string]any
	err := StreamFeatures(strings.NewReader(in), ndjson, func(f map[string]any) error {
		feats = append(feats, f)
		return nil
	})
	return feats, err
}

const feat1 = `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"n":1}}`
const feat2 = `{"type":"Feature","geometry":null,"properties":{"n":2}}`

/*
TestStreamFeatures_Shapes verifies the four accepted input shapes and their
emission order:

  - single Feature → one emit
  - FeatureCollection → features in collection order
  - bare array → Feature elements in order, non-Features silently skipped
  - NDJSON → each line handled independently, line order preserved
*/
func TestStreamFeatures_Shapes(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		ndjson bool
		wantN  []any // expected properties.n sequence
	}{
		{
			name:  "single_feature",
			in:    feat1,
			wantN: []any{float64(1)},
		},
		{
			name:  "trailing_whitespace_tolerated",
			in:    feat1 + "\n\t  \n",
			wantN: []any{float64(1)},
		},
		{
			name:  "feature_collection",
			in:    `{"type":"FeatureCollection","features":[` + feat1 + `,` + feat2 + `]}`,
			wantN: []any{float64(1), float64(2)},
		},
		{
			name:  "bare_array",
			in:    `[` + feat1 + `,` + feat2 + `]`,
			wantN: []any{float64(1), float64(2)},
		},
		{
			name: "bare_array_skips_non_features",
			in: `[` + feat1 + `,{"type":"Point","coordinates":[0,0]},` +
				`"stray string",` + feat2 + `]`,
			wantN: []any{float64(1), float64(2)},
		},
		{
			name:   "ndjson_mixed_lines",
			in:     feat1 + "\n" + `{"type":"FeatureCollection","features":[` + feat2 + `]}` + "\n",
			ndjson: true,
			wantN:  []any{float64(1), float64(2)},
		},
		{
			name:   "ndjson_empty_stream",
			in:     "",
			ndjson: true,
			wantN:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			feats, err := collect(t, tc.in, tc.ndjson)
			if err != nil {
				t.Fatalf("StreamFeatures: %v", err)
			}
			if len(feats) != len(tc.wantN) {
				t.Fatalf("got %d features, want %d", len(feats), len(tc.wantN))
			}
			for i, want := range tc.wantN {
				props := feats[i]["properties"].(map[string]any)
				if props["n"] != want {
					t.Fatalf("feature %d: n = %v, want %v", i, props["n"], want)
				}
			}
		})
	}
}

/*
TestStreamFeatures_Malformed verifies the rejection paths: unrecognized
top-level values, empty whole-file input, a FeatureCollection with a
non-Feature element (stricter than the bare-array case), and NDJSON error
messages that carry the 1-based value ordinal.
*/
func TestStreamFeatures_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		ndjson   bool
		wantLine int
	}{
		{name: "empty_input", in: ""},
		{name: "scalar", in: `42`},
		{name: "plain_object", in: `{"hello":"world"}`},
		{name: "geometry_not_feature", in: `{"type":"Point","coordinates":[0,0]}`},
		{
			name: "collection_with_non_feature",
			in:   `{"type":"FeatureCollection","features":[` + feat1 + `,{"type":"Point"}]}`,
		},
		{
			name:     "ndjson_bad_second_line",
			in:       feat1 + "\n42\n",
			ndjson:   true,
			wantLine: 2,
		},
		// Whole-file mode is exactly one value: a second value or raw
		// garbage after it is rejected, where NDJSON mode would accept
		// the former.
		{
			name: "trailing_second_value",
			in:   feat1 + "\n" + feat1,
		},
		{
			name: "trailing_garbage",
			in:   `{"type":"FeatureCollection","features":[` + feat1 + `]}` + "}",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := collect(t, tc.in, tc.ndjson)
			var me *MalformedInputError
			if !errors.As(err, &me) {
				t.Fatalf("err = %v, want *MalformedInputError", err)
			}
			if me.Line != tc.wantLine {
				t.Fatalf("Line = %d, want %d", me.Line, tc.wantLine)
			}
		})
	}
}

/*
TestStreamFeatures_EmitError verifies that an emit error stops the stream
immediately and propagates unchanged.
*/
func TestStreamFeatures_EmitError(t *testing.T) {
	sentinel := errors.New("stop")
	calls := 0
	err := StreamFeatures(
		strings.NewReader(`{"type":"FeatureCollection","features":[`+feat1+`,`+feat2+`]}`),
		false,
		func(map[string]any) error {
			calls++
			return sentinel
		},
	)
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if calls != 1 {
		t.Fatalf("emit called %d times after error, want 1", calls)
	}
}
