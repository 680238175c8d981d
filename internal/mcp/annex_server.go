package mcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	annex "github.com/wagiedev/git-annex-adapter-go"
)

// Tool names served by AnnexServer.
const (
	ToolMetadata  = "annex_metadata"
	ToolInfo      = "annex_info"
	ToolLookupKey = "annex_lookupkey"
)

// AnnexServer exposes the batch queries of one repository as MCP tools.
//
// Each tool is backed by a batch session started on first use and kept for
// later calls. Batch sessions are single-owner while the MCP server may
// dispatch calls concurrently, so every call holds mu.
type AnnexServer struct {
	*SDKServer

	log  *slog.Logger
	repo *annex.Repo

	mu       sync.Mutex
	metadata *annex.MetadataBatch
	info     *annex.InfoJSONBatch
	lookup   *annex.LookupKeyBatch
}

// NewAnnexServer creates a tool server for repo.
func NewAnnexServer(repo *annex.Repo, version string, log *slog.Logger) (*AnnexServer, error) {
	if log == nil {
		log = annex.NopLogger()
	}

	s := &AnnexServer{
		SDKServer: NewSDKServer("git-annex", version),
		log:       log.With("component", "mcp"),
		repo:      repo,
	}

	tools := []struct {
		tool    *mcp.Tool
		handler mcp.ToolHandler
	}{
		{
			NewTool(ToolMetadata, "Show the git-annex metadata of a key or an annexed file as JSON.",
				ObjectSchema(map[string]string{
					"key":  "git-annex key, e.g. SHA256E-s0--0",
					"file": "path of an annexed file relative to the repository",
				})),
			s.handleMetadata,
		},
		{
			NewTool(ToolInfo, "Show git-annex info for a remote, directory, treeish or annexed file as JSON.",
				ObjectSchema(map[string]string{
					"target": `"here", a remote name, a directory or an annexed file`,
				}, "target")),
			s.handleInfo,
		},
		{
			NewTool(ToolLookupKey, "Look up the git-annex key of an annexed file.",
				ObjectSchema(map[string]string{
					"file": "path of the file relative to the repository",
				}, "file")),
			s.handleLookupKey,
		},
	}

	for _, t := range tools {
		if err := s.AddTool(t.tool, t.handler); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Run serves the tools over stdio until the client disconnects or ctx is
// cancelled, then closes every batch session.
func (s *AnnexServer) Run(ctx context.Context) error {
	defer func() {
		if err := s.Close(); err != nil {
			s.log.Warn("failed to close batch sessions", "error", err)
		}
	}()

	s.log.Info("Serving MCP tools", "repo", s.repo.Path())

	return s.Serve(ctx, &mcp.StdioTransport{})
}

// Close ends every batch session started so far.
func (s *AnnexServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	if s.metadata != nil {
		errs = append(errs, s.metadata.Close())
		s.metadata = nil
	}

	if s.info != nil {
		errs = append(errs, s.info.Close())
		s.info = nil
	}

	if s.lookup != nil {
		errs = append(errs, s.lookup.Close())
		s.lookup = nil
	}

	return stderrors.Join(errs...)
}

func (s *AnnexServer) handleMetadata(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	key, _ := args["key"].(string)
	file, _ := args["file"].(string)

	if key == "" && file == "" {
		return ErrorResult("either key or file is required"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metadata == nil {
		// Sessions outlive the request that started them.
		s.metadata, err = s.repo.Annex.Metadata(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
	}

	record, err := s.metadata.Do(annex.MetadataRequest{Key: key, File: file})
	if err != nil {
		return failure(s, err, &s.metadata), nil
	}

	return TextResult(record.Raw), nil
}

func (s *AnnexServer) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	target, _ := args["target"].(string)
	if target == "" {
		return ErrorResult("target is required"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.info == nil {
		s.info, err = s.repo.Annex.InfoJSON(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
	}

	record, err := s.info.Query(target)
	if err != nil {
		return failure(s, err, &s.info), nil
	}

	return TextResult(record.Raw), nil
}

func (s *AnnexServer) handleLookupKey(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	file, _ := args["file"].(string)
	if file == "" {
		return ErrorResult("file is required"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookup == nil {
		s.lookup, err = s.repo.Annex.LookupKey(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
	}

	key, ok, err := s.lookup.Lookup(file)
	if err != nil {
		return failure(s, err, &s.lookup), nil
	}

	if !ok {
		return ErrorResult(fmt.Sprintf("%s is not an annexed file", file)), nil
	}

	return TextResult(key), nil
}

// failure turns a batch error into an error result. A session whose process
// ended is closed and dropped so the next call starts a fresh one.
func failure[B interface{ Close() error }](s *AnnexServer, err error, session *B) *mcp.CallToolResult {
	if _, ok := stderrors.AsType[*annex.TerminatedError](err); ok {
		s.log.Warn("batch session terminated, restarting on next call", "error", err)

		if closeErr := (*session).Close(); closeErr != nil {
			s.log.Debug("failed to close terminated session", "error", closeErr)
		}

		var zero B
		*session = zero
	}

	return ErrorResult(err.Error())
}
