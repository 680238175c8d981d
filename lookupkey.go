package annex

import (
	"context"

	"github.com/wagiedev/git-annex-adapter-go/internal/protocol"
)

// LookupKeyBatch is a `git annex lookupkey --batch` session.
type LookupKeyBatch struct {
	batch
}

// LookupKey starts a lookupkey batch session. The caller must Close it.
func (a *Annex) LookupKey(ctx context.Context) (*LookupKeyBatch, error) {
	b, err := a.startBatch(ctx, protocol.LookupKey)
	if err != nil {
		return nil, err
	}

	return &LookupKeyBatch{batch: b}, nil
}

// Lookup returns the key of the annexed file at path.
// ok is false when the file is not annexed.
func (b *LookupKeyBatch) Lookup(path string) (key string, ok bool, err error) {
	line, err := protocol.EncodeLookupKey(path)
	if err != nil {
		return "", false, err
	}

	resp, err := b.proc.Communicate(line)
	if err != nil {
		return "", false, err
	}

	key, ok = protocol.DecodeLookupKey(resp)

	return key, ok, nil
}
