package protocol

import (
	"fmt"
	"strings"

	"github.com/wagiedev/git-annex-adapter-go/internal/errors"
)

// EncodeLookupKey validates a lookupkey request.
func EncodeLookupKey(file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("%w: lookupkey needs a file", errors.ErrInvalidRequest)
	}

	return file, nil
}

// DecodeLookupKey decodes a lookupkey response. git-annex answers with an
// empty line for files that are not annexed.
func DecodeLookupKey(line string) (string, bool) {
	key := strings.TrimSpace(line)

	return key, key != ""
}
