package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML graph document. Unknown keys are rejected.
func ParseYAML(data []byte) (*GraphDoc, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc GraphDoc
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse graph yaml: empty document")
		}
		return nil, fmt.Errorf("parse graph yaml: %w", err)
	}
	return &doc, nil
}
