// Package api carries the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// OpenAPI is api/openapi.yaml, embedded so the binary serves its own docs
// regardless of the working directory.
//
//go:embed openapi.yaml
var OpenAPI []byte
