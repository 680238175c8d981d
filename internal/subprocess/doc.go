// Package subprocess runs git-annex and drives its batch protocols.
//
// Two primitives are provided. Runner executes a command to completion in a
// fixed working directory and captures its output. Process wraps a long-lived
// subprocess and exposes a strictly sequential request/response cycle over
// its stdin and stdout: one line in, one or more lines out, with the
// multi-line boundary decided by a caller supplied Framer.
//
// A Process is owned by a single goroutine. Requests and responses are
// correlated by position only, so concurrent use of one Process is undefined.
package subprocess
