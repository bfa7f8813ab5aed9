package http

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yml
var openAPISource []byte

// OpenAPIDocument parses and validates the embedded API description and
// returns it rendered as JSON, ready to serve.
func OpenAPIDocument() ([]byte, error) {
	loader := openapi3.NewLoader()

	document, err := loader.LoadFromData(openAPISource)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = document.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	return document.MarshalJSON()
}
