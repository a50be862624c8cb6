// Package geojson streams Feature objects out of GeoJSON or NDJSON input.
//
// Four input shapes are accepted:
//
//   - a single Feature
//   - a FeatureCollection
//   - a bare array of Features
//   - NDJSON, where every line is itself one of the above
//
// Features are emitted in document order: array and collection order is
// preserved, as is NDJSON line order. Anything that is none of the four
// shapes fails the run with a *MalformedInputError.
package geojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MalformedInputError reports input that matches none of the accepted
// GeoJSON shapes. Line is the 1-based NDJSON value ordinal, or 0 when the
// whole file was decoded as a single value.
type MalformedInputError struct {
	Line   int
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("geojson: value %d: %s", e.Line, e.Reason)
	}
	return "geojson: " + e.Reason
}

// EmitFunc receives one decoded Feature. Returning an error stops the
// stream and propagates out of StreamFeatures.
type EmitFunc func(feature map[string]any) error

// StreamFeatures decodes r and calls emit once per Feature. In NDJSON mode
// every top-level JSON value is handled independently; otherwise the whole
// input must be exactly one value, and trailing data after it is malformed.
// Empty input is malformed in either interpretation except for an NDJSON
// stream, which may legitimately hold zero values.
func StreamFeatures(r io.Reader, ndjson bool, emit EmitFunc) error {
	dec := json.NewDecoder(r)

	if !ndjson {
		var root any
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				return &MalformedInputError{Reason: "empty input"}
			}
			return fmt.Errorf("geojson: decode: %w", err)
		}
		// A whole-file input is exactly one value; anything after it
		// (other than whitespace) means the file is not the shape it
		// claimed to be.
		if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
			return &MalformedInputError{Reason: "trailing data after the top-level value"}
		}
		return emitValue(root, 0, emit)
	}

	line := 0
	for {
		var root any
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("geojson: decode value %d: %w", line+1, err)
		}
		line++
		if err := emitValue(root, line, emit); err != nil {
			return err
		}
	}
}

func emitValue(root any, line int, emit EmitFunc) error {
	switch v := root.(type) {
	case map[string]any:
		if IsFeature(v) {
			return emit(v)
		}
		if feats, ok := featureList(v); ok {
			for _, f := range feats {
				obj, isObj := f.(map[string]any)
				if !isObj || !IsFeature(obj) {
					return &MalformedInputError{Line: line, Reason: "FeatureCollection element is not a Feature"}
				}
				if err := emit(obj); err != nil {
					return err
				}
			}
			return nil
		}
		return &MalformedInputError{Line: line, Reason: "object is not a Feature, FeatureCollection, or array of Features"}

	case []any:
		// A bare array loads only its Feature elements; anything else in
		// the array is skipped without error.
		for _, f := range v {
			if obj, ok := f.(map[string]any); ok && IsFeature(obj) {
				if err := emit(obj); err != nil {
					return err
				}
			}
		}
		return nil

	default:
		return &MalformedInputError{Line: line, Reason: fmt.Sprintf("unsupported value of type %T", root)}
	}
}

// IsFeature reports whether obj is a GeoJSON Feature object.
func IsFeature(obj map[string]any) bool {
	t, _ := obj["type"].(string)
	return t == "Feature"
}

// featureList returns the features array of a FeatureCollection. An object
// typed as a FeatureCollection without a features array is not recognized.
func featureList(obj map[string]any) ([]any, bool) {
	if t, _ := obj["type"].(string); t != "FeatureCollection" {
		return nil, false
	}
	feats, ok := obj["features"].([]any)
	return feats, ok
}
