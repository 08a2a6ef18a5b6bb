package domain

import "time"

// Marker is a map marker bound to one located feature.
type Marker struct {
	Location     GeoPoint `json:"location"`
	Label        string   `json:"label"`
	FeatureIndex int      `json:"feature_index"`
}

// Cluster is a group of markers rendered as one glyph at a given zoom.
// A cluster with a single marker is drawn as that marker.
type Cluster struct {
	Center  GeoPoint `json:"center"`
	Count   int      `json:"count"`
	Markers []Marker `json:"markers"`
	Bounds  Bounds   `json:"bounds"`
	Spread  float64  `json:"spread_m"` // farthest member from the centre, in metres
}

// Blob is an in-memory file waiting to be downloaded.
type Blob struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Filename    string    `json:"filename"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// ViewerEventType names a step of the viewer flow.
type ViewerEventType string

const (
	EventLoadRequested   ViewerEventType = "load-requested"
	EventLoadSucceeded   ViewerEventType = "load-succeeded"
	EventLoadFailed      ViewerEventType = "load-failed"
	EventExportRequested ViewerEventType = "export-requested"
	EventExportReady     ViewerEventType = "export-ready"
)

// ViewerEvent is emitted by a viewer controller.
type ViewerEvent struct {
	Type      ViewerEventType `json:"type"`
	SessionID string          `json:"session_id"`
	Time      time.Time       `json:"time"`
	Markers   int             `json:"markers,omitempty"`
	Features  int             `json:"features,omitempty"`
	Href      string          `json:"href,omitempty"`
	Error     string          `json:"error,omitempty"`
}
