// Package mcp serves git-annex batch queries as Model Context Protocol tools.
//
// AnnexServer registers one tool per batch protocol and keeps one batch
// session per tool for the life of the server. Tools can be called directly
// through CallTool or served to an MCP client over stdio.
package mcp
