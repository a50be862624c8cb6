package transform

import (
	"geoload/pkg/document"
)

// DocumentFromRow builds an ordered document from one CSV record. header
// carries the (possibly normalized) column keys in file order; cells beyond
// the record length become nil, mirroring a reader that pads short rows.
//
// Duplicate keys (duplicate raw headers, or distinct headers that normalize
// to the same key) resolve last-write-wins: the later column's
// value lands in the earlier column's position.
func DocumentFromRow(header []string, rec []string) document.Doc {
	doc := make(document.Doc, 0, len(header))
	for i, key := range header {
		var v any
		if i < len(rec) {
			v = Coerce(rec[i])
		}
		doc = document.Set(doc, key, v)
	}
	return doc
}
