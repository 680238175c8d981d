package annex

import (
	"context"

	"github.com/wagiedev/git-annex-adapter-go/internal/protocol"
)

// InfoField is one "name: value" line of an info response.
// Continuation lines have an empty Name.
type InfoField = protocol.Field

// InfoRecord is one response of the JSON info protocol.
type InfoRecord = protocol.InfoRecord

// InfoBatch is a `git annex info --batch` session.
//
// Responses are multi-line text whose length depends on the kind of target.
// git-annex prints nothing for targets it cannot resolve, which would block
// Query forever; use InfoJSONBatch when targets are not known to exist.
type InfoBatch struct {
	batch
}

// Info starts a text info batch session. The caller must Close it.
func (a *Annex) Info(ctx context.Context) (*InfoBatch, error) {
	b, err := a.startBatch(ctx, protocol.Info)
	if err != nil {
		return nil, err
	}

	return &InfoBatch{batch: b}, nil
}

// Query returns the response lines for target: "here", a remote, a
// directory, a treeish or an annexed file.
func (b *InfoBatch) Query(target string) ([]string, error) {
	return b.proc.CommunicateLines(target, b.protocol.Framer)
}

// Fields queries target and splits the response into fields.
func (b *InfoBatch) Fields(target string) ([]InfoField, error) {
	lines, err := b.Query(target)
	if err != nil {
		return nil, err
	}

	return protocol.ParseInfoFields(lines), nil
}

// InfoJSONBatch is a `git annex info --batch --json` session.
type InfoJSONBatch struct {
	batch
}

// InfoJSON starts a JSON info batch session. The caller must Close it.
func (a *Annex) InfoJSON(ctx context.Context) (*InfoJSONBatch, error) {
	b, err := a.startBatch(ctx, protocol.InfoJSON)
	if err != nil {
		return nil, err
	}

	return &InfoJSONBatch{batch: b}, nil
}

// Query returns the decoded response for target.
func (b *InfoJSONBatch) Query(target string) (*InfoRecord, error) {
	line, err := b.proc.Communicate(target)
	if err != nil {
		return nil, err
	}

	return protocol.DecodeInfoJSON(line)
}

// ParseInfoFields splits info response lines into fields in order.
func ParseInfoFields(lines []string) []InfoField {
	return protocol.ParseInfoFields(lines)
}
