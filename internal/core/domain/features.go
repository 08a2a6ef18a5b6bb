package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// FeatureCollection is the document served at /get_mural_data.
// The raw bytes it was decoded from are retained so that an export mirrors
// the fetched document exactly, including members this type does not model.
type FeatureCollection struct {
	Type     string    `json:"type,omitempty"`
	Features []Feature `json:"features"`

	raw json.RawMessage
}

// Feature is a single mural record. Geometry is nil when the source had
// `"geometry": null` or no geometry member at all.
type Feature struct {
	Type       string     `json:"type,omitempty"`
	Geometry   *Geometry  `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Geometry is a GeoJSON point; coordinates are [lon, lat].
type Geometry struct {
	Type        string    `json:"type,omitempty"`
	Coordinates []float64 `json:"coordinates"`
}

// Location returns the point as a GeoPoint.
func (g *Geometry) Location() GeoPoint {
	return GeoPoint{Lat: g.Coordinates[1], Lon: g.Coordinates[0]}
}

// Properties holds the free-form feature properties.
type Properties map[string]any

// Name returns the display name, or "" when absent.
func (p Properties) Name() string {
	name, _ := p["name"].(string)
	return name
}

// DecodeFeatureCollection parses and validates a fetched document.
// Validation is structural only: a "features" array must be present, every
// non-null geometry needs at least two finite coordinates, and a name, if
// present, must be a string.
func DecodeFeatureCollection(data []byte) (*FeatureCollection, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	features, ok := top["features"]
	if !ok {
		return nil, fmt.Errorf("%w: missing features member", ErrMalformedDocument)
	}
	if trimmed := bytes.TrimSpace(features); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: features is not an array", ErrMalformedDocument)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	for i, f := range fc.Features {
		if f.Geometry != nil {
			if len(f.Geometry.Coordinates) < 2 {
				return nil, fmt.Errorf("%w: feature %d has fewer than two coordinates", ErrMalformedDocument, i)
			}
			for _, c := range f.Geometry.Coordinates[:2] {
				if math.IsNaN(c) || math.IsInf(c, 0) {
					return nil, fmt.Errorf("%w: feature %d has a non-finite coordinate", ErrMalformedDocument, i)
				}
			}
		}
		if name, ok := f.Properties["name"]; ok && name != nil {
			if _, isString := name.(string); !isString {
				return nil, fmt.Errorf("%w: feature %d name is not a string", ErrMalformedDocument, i)
			}
		}
	}

	fc.raw = append(json.RawMessage(nil), data...)
	return &fc, nil
}

// Raw returns the compact JSON text of the document as it was fetched.
// Collections built in code (not decoded) are marshalled instead.
func (fc *FeatureCollection) Raw() ([]byte, error) {
	if fc.raw == nil {
		return json.Marshal(fc)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, fc.raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Located returns the features that carry a geometry, with their index in
// the collection.
func (fc *FeatureCollection) Located() ([]Feature, []int) {
	var (
		located []Feature
		indexes []int
	)
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		located = append(located, f)
		indexes = append(indexes, i)
	}
	return located, indexes
}
