package annex

import (
	"context"
	"maps"

	"github.com/wagiedev/git-annex-adapter-go/internal/protocol"
)

// MetadataRequest is one request of the metadata batch protocol.
type MetadataRequest = protocol.MetadataRequest

// MetadataRecord is one response of the metadata batch protocol.
type MetadataRecord = protocol.MetadataRecord

// MetadataBatch is a `git annex metadata --batch --json` session.
// Every request is one JSON line answered by exactly one JSON line.
type MetadataBatch struct {
	batch
}

// Metadata starts a metadata batch session. The caller must Close it.
func (a *Annex) Metadata(ctx context.Context) (*MetadataBatch, error) {
	b, err := a.startBatch(ctx, protocol.Metadata)
	if err != nil {
		return nil, err
	}

	return &MetadataBatch{batch: b}, nil
}

// Get returns the metadata of key.
func (b *MetadataBatch) Get(key string) (*MetadataRecord, error) {
	return b.Do(MetadataRequest{Key: key})
}

// GetFile returns the metadata of the annexed file at path.
func (b *MetadataBatch) GetFile(path string) (*MetadataRecord, error) {
	return b.Do(MetadataRequest{File: path})
}

// Set replaces the listed fields of key and returns the resulting metadata.
// A field with no values is removed.
func (b *MetadataBatch) Set(key string, fields map[string][]string) (*MetadataRecord, error) {
	req := MetadataRequest{Key: key, Fields: make(map[string][]string, len(fields))}

	maps.Copy(req.Fields, fields)

	for name, values := range req.Fields {
		if values == nil {
			req.Fields[name] = []string{}
		}
	}

	return b.Do(req)
}

// Do sends one request and decodes its response.
//
// A record git-annex marked as failed is returned together with an error
// wrapping ErrBatchFailed.
func (b *MetadataBatch) Do(req MetadataRequest) (*MetadataRecord, error) {
	line, err := req.Encode()
	if err != nil {
		return nil, err
	}

	resp, err := b.proc.Communicate(line)
	if err != nil {
		return nil, err
	}

	return protocol.DecodeMetadata(resp)
}
