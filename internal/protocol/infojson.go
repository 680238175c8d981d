package protocol

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/wagiedev/git-annex-adapter-go/internal/errors"
)

// InfoRecord is one response of the JSON info batch protocol.
type InfoRecord struct {
	Command string
	Note    string
	Success bool

	// Fields holds every other member in the order git-annex printed them.
	// Nested objects and arrays keep their raw JSON text.
	Fields []Field

	// Raw is the response line exactly as git-annex printed it.
	Raw string
}

// Get returns the value of the field named name.
func (r *InfoRecord) Get(name string) (string, bool) {
	return Lookup(r.Fields, name)
}

// DecodeInfoJSON decodes one response line of the JSON info protocol.
//
// A record with success=false is returned together with an error wrapping
// ErrBatchFailed.
func DecodeInfoJSON(line string) (*InfoRecord, error) {
	if !gjson.Valid(line) {
		return nil, fmt.Errorf("%w: not valid JSON: %q", errors.ErrInvalidRecord, line)
	}

	parsed := gjson.Parse(line)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: not a JSON object: %q", errors.ErrInvalidRecord, line)
	}

	record := &InfoRecord{Raw: line}

	parsed.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "command":
			record.Command = value.String()
		case "note":
			record.Note = value.String()
		case "success":
			record.Success = value.Bool()
		default:
			text := value.String()
			if value.IsObject() || value.IsArray() {
				text = value.Raw
			}

			record.Fields = append(record.Fields, Field{Name: key.String(), Value: text})
		}

		return true
	})

	if !record.Success {
		return record, fmt.Errorf("%w: info: %s", errors.ErrBatchFailed, record.Note)
	}

	return record, nil
}
