// Package document defines the ordered document model shared by the three
// loaders. A Doc is the unit handed to the sink: field order is preserved
// (CSV documents mirror header order), keys are strings, and values are one
// of nil, int64, float64, string, a nested map, or a GeoJSON geometry map.
package document

import "go.mongodb.org/mongo-driver/bson"

// Doc is an ordered field-name → value document. It aliases bson.D so the
// sink can hand it to the driver without conversion while transforms stay
// free to build it field by field.
type Doc = bson.D

// Set assigns key to v, replacing the existing entry in place when the key
// is already present and appending otherwise. Replacement keeps the original
// position, which gives the same last-write-wins behavior as assigning into
// an insertion-ordered map.
func Set(d Doc, key string, v any) Doc {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = v
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: v})
}

// Get returns the value for key and whether the key is present.
func Get(d Doc, key string) (any, bool) {
	for i := range d {
		if d[i].Key == key {
			return d[i].Value, true
		}
	}
	return nil, false
}
