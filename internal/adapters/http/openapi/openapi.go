// Package openapi serves the embedded OpenAPI document of the HTTP API.
package openapi

import (
	_ "embed"
	"net/http"
)

// Spec contains the embedded OpenAPI YAML document.
//
//go:embed openapi.yaml
var Spec []byte

// HandleSpec handles GET /openapi.yaml requests.
func HandleSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(Spec)
}
