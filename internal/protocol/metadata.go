package protocol

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/git-annex-adapter-go/internal/errors"
)

// MetadataRequest is one request line of the metadata batch protocol.
// Either Key or File must be set. Fields, when set, replaces the listed
// fields; an empty value list removes a field.
type MetadataRequest struct {
	Key    string              `json:"key,omitempty"`
	File   string              `json:"file,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// Encode renders the request as a single JSON line.
func (r MetadataRequest) Encode() (string, error) {
	if r.Key == "" && r.File == "" {
		return "", fmt.Errorf("%w: metadata request needs a key or a file", errors.ErrInvalidRequest)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode metadata request: %w", err)
	}

	return string(data), nil
}

// MetadataRecord is one response of the metadata batch protocol.
type MetadataRecord struct {
	Command string              `json:"command"`
	Note    string              `json:"note"`
	Success bool                `json:"success"`
	Key     string              `json:"key"`
	File    *string             `json:"file"`
	Fields  map[string][]string `json:"fields"`

	// Raw is the response line exactly as git-annex printed it.
	Raw string `json:"-"`
}

var (
	metadataSchemaOnce sync.Once
	metadataSchema     *jsonschema.Resolved
	metadataSchemaErr  error
)

// MetadataSchema returns the schema every metadata response must satisfy.
func MetadataSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"command", "success"},
		Properties: map[string]*jsonschema.Schema{
			"command": {Type: "string"},
			"note":    {Type: "string"},
			"success": {Type: "boolean"},
			"key":     {Type: "string"},
			"file":    {Types: []string{"string", "null"}},
			"fields": {
				Type: "object",
				AdditionalProperties: &jsonschema.Schema{
					Type:  "array",
					Items: &jsonschema.Schema{Type: "string"},
				},
			},
		},
	}
}

func resolvedMetadataSchema() (*jsonschema.Resolved, error) {
	metadataSchemaOnce.Do(func() {
		metadataSchema, metadataSchemaErr = MetadataSchema().Resolve(nil)
	})

	return metadataSchema, metadataSchemaErr
}

// DecodeMetadata validates and decodes one metadata response line.
//
// A well-formed record with success=false is returned together with an
// error wrapping ErrBatchFailed.
func DecodeMetadata(line string) (*MetadataRecord, error) {
	var instance map[string]any
	if err := json.Unmarshal([]byte(line), &instance); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidRecord, err)
	}

	schema, err := resolvedMetadataSchema()
	if err != nil {
		return nil, fmt.Errorf("resolve metadata schema: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidRecord, err)
	}

	record := &MetadataRecord{Raw: line}
	if err := json.Unmarshal([]byte(line), record); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidRecord, err)
	}

	if record.Fields == nil {
		record.Fields = map[string][]string{}
	}

	if !record.Success {
		return record, fmt.Errorf("%w: metadata %s: %s", errors.ErrBatchFailed, record.Key, record.Note)
	}

	return record, nil
}
