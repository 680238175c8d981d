// Package cli provides git discovery, git-annex version validation, and
// argument building for the git-annex subcommands the adapter drives.
//
// # Discovery
//
// The Discoverer interface locates the git binary that git-annex is run through:
//
//	discoverer := cli.NewDiscoverer(&cli.Config{
//	    GitPath: "",           // Optional explicit path
//	    Logger:  slog.Default(),
//	})
//	gitPath, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.GitPath (if provided)
//  2. System PATH
//  3. Common installation directories (/usr/local/bin, /usr/bin, /opt/homebrew/bin)
//
// # Version Validation
//
// During discovery, `git annex version --raw` is compared against
// MinimumVersion. A warning is logged if the version is below minimum or
// git-annex is missing. The probe can be skipped via Config.SkipVersionCheck
// or the GIT_ANNEX_ADAPTER_SKIP_VERSION_CHECK environment variable.
//
// # Command Building
//
// AnnexPrefix, InitArgs and the batch argument builders return the tokens
// handed to subprocess.Runner and subprocess.Process.
package cli
