// annexctl queries and sets up git-annex repositories from the command line.
package main

import (
	"os"

	"github.com/wagiedev/git-annex-adapter-go/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
