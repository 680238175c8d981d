package protocol

import (
	"slices"

	"github.com/wagiedev/git-annex-adapter-go/internal/cli"
	"github.com/wagiedev/git-annex-adapter-go/internal/subprocess"
)

// Protocol describes one git-annex batch sub-protocol.
//
// Every sub-protocol runs in its own subprocess, so a Protocol maps to
// exactly one batch subcommand.
type Protocol struct {
	// Name identifies the protocol in logs.
	Name string

	// Args are the git-annex arguments that start batch mode.
	Args []string

	// Framer recognizes the end of one response.
	Framer subprocess.Framer
}

// Command builds the subprocess command for the protocol.
func (p Protocol) Command(gitPath, dir string) subprocess.Command {
	return subprocess.NewCommand(dir, cli.Full(cli.AnnexPrefix(gitPath), p.Args...)...)
}

// Known batch sub-protocols.
var (
	// Metadata is `git annex metadata --batch --json`.
	Metadata = Protocol{
		Name:   "metadata",
		Args:   cli.MetadataBatchArgs(),
		Framer: subprocess.UntilCount(1),
	}

	// Info is `git annex info --batch` in its human readable form.
	Info = Protocol{
		Name:   "info",
		Args:   cli.InfoBatchArgs(false),
		Framer: InfoFramer{},
	}

	// InfoJSON is `git annex info --batch --json`.
	InfoJSON = Protocol{
		Name:   "info-json",
		Args:   cli.InfoBatchArgs(true),
		Framer: subprocess.UntilCount(1),
	}

	// LookupKey is `git annex lookupkey --batch`.
	LookupKey = Protocol{
		Name:   "lookupkey",
		Args:   cli.LookupKeyBatchArgs(),
		Framer: subprocess.UntilCount(1),
	}
)

// All returns every known protocol.
func All() []Protocol {
	return slices.Clone([]Protocol{Metadata, Info, InfoJSON, LookupKey})
}
