package document

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

/*
TestSet verifies the two Set behaviors: appending a new key at the end, and
replacing an existing key's value in place so the field keeps its original
position (last-write-wins without reordering).
*/
func TestSet(t *testing.T) {
	var d Doc
	d = Set(d, "a", int64(1))
	d = Set(d, "b", "x")
	d = Set(d, "c", nil)

	want := Doc{
		{Key: "a", Value: int64(1)},
		{Key: "b", Value: "x"},
		{Key: "c", Value: nil},
	}
	if !reflect.DeepEqual(d, want) {
		t.Fatalf("after appends: %#v, want %#v", d, want)
	}

	d = Set(d, "a", int64(2))
	if d[0] != (bson.E{Key: "a", Value: int64(2)}) {
		t.Fatalf("replace moved or missed the field: %#v", d)
	}
	if len(d) != 3 {
		t.Fatalf("replace changed length: %d", len(d))
	}
}

/*
TestGet verifies presence and absence, including a stored nil value, which
must report present.
*/
func TestGet(t *testing.T) {
	d := Doc{
		{Key: "a", Value: int64(1)},
		{Key: "b", Value: nil},
	}

	if v, ok := Get(d, "a"); !ok || v != int64(1) {
		t.Fatalf("Get(a) = (%v, %v)", v, ok)
	}
	if v, ok := Get(d, "b"); !ok || v != nil {
		t.Fatalf("Get(b) = (%v, %v), want (nil, true)", v, ok)
	}
	if _, ok := Get(d, "missing"); ok {
		t.Fatal("Get(missing) reported present")
	}
}
