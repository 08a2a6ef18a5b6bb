package domain

import (
	"reflect"
	"testing"
)

func TestFeatureCollection_Located(t *testing.T) {
	fc, err := DecodeFeatureCollection([]byte(`{"features":[
		{"geometry":null,"properties":{"name":"Ghost"}},
		{"geometry":{"coordinates":[-122.27,37.80]},"properties":{"name":"Mural A"}},
		{"properties":{"name":"Absent"}}
	]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	located, indexes := fc.Located()
	if !reflect.DeepEqual(indexes, []int{1}) {
		t.Fatalf("expected index [1], got %v", indexes)
	}
	if located[0].Properties.Name() != "Mural A" {
		t.Errorf("unexpected feature %+v", located[0])
	}
	if loc := located[0].Geometry.Location(); loc.Lat != 37.80 || loc.Lon != -122.27 {
		t.Errorf("expected (37.80, -122.27), got %+v", loc)
	}
}
