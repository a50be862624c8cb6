package transform

import (
	"sort"

	"geoload/pkg/document"
)

// FeatureOptions controls how a GeoJSON Feature becomes a document.
type FeatureOptions struct {
	// GeometryField is the document key that receives the Feature geometry.
	GeometryField string

	// Flatten moves the Feature's top-level properties into the document
	// root instead of nesting them under "properties". Nested property
	// objects stay nested. On a key collision the flattened property wins.
	Flatten bool

	// KeepFeatureID retains the Feature's "id" member as _feature_id. The
	// distinct name keeps it clear of the database's own _id.
	KeepFeatureID bool
}

// FeatureIDField is where a retained Feature id is stored.
const FeatureIDField = "_feature_id"

// DocumentFromFeature converts one decoded GeoJSON Feature into a document.
// The geometry lands first under opt.GeometryField (null geometry is kept as
// null); properties follow, either nested or flattened per opt. Flattened
// keys are emitted in sorted order so output is deterministic.
//
// The caller guarantees feat is a Feature object; shape checking lives in
// the parser.
func DocumentFromFeature(feat map[string]any, opt FeatureOptions) document.Doc {
	doc := document.Doc{{Key: opt.GeometryField, Value: feat["geometry"]}}

	props, _ := feat["properties"].(map[string]any)
	if opt.Flatten {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			doc = document.Set(doc, k, props[k])
		}
	} else {
		if props == nil {
			props = map[string]any{}
		}
		doc = document.Set(doc, "properties", props)
	}

	if opt.KeepFeatureID {
		if id, ok := feat["id"]; ok {
			doc = document.Set(doc, FeatureIDField, id)
		}
	}
	return doc
}
