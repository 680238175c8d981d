// Package protocol implements the git-annex batch sub-protocols on top of
// subprocess.Process.
//
// Each Protocol pairs the arguments that start a batch subcommand with the
// Framer that recognizes the end of one response. The core process layer
// never guesses a termination rule; it lives here, next to the decoders for
// each response shape:
//
//   - metadata --batch --json: one JSON object per request, validated
//     against a JSON schema and decoded into a MetadataRecord.
//   - info --batch: several "name: value" lines per request, framed by the
//     fields git-annex prints last for each kind of target.
//   - info --batch --json: one JSON object per request, decoded into
//     ordered fields.
//   - lookupkey --batch: one line per request, empty when the file is not
//     annexed.
//
// Example usage:
//
//	proc, err := subprocess.Start(ctx, subprocess.NewCommand(dir,
//	    cli.Full(cli.AnnexPrefix(gitPath), protocol.Info.Args...)...), opts)
//	lines, err := proc.CommunicateLines("here", protocol.Info.Framer)
package protocol
