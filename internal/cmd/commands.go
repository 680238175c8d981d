package cmd

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	annex "github.com/wagiedev/git-annex-adapter-go"
	"github.com/wagiedev/git-annex-adapter-go/internal/cli"
	"github.com/wagiedev/git-annex-adapter-go/internal/mcp"
)

func newInitCommand(g *globals) *cobra.Command {
	var version, description string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize git-annex in an existing git repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setup := annex.InitOptions{Description: description}

			if version != "" {
				v, err := annex.ParseVersion(version)
				if err != nil {
					return err
				}

				setup.Version = v
			}

			opts, err := g.options()
			if err != nil {
				return err
			}

			repo, err := annex.Init(cmd.Context(), g.repo, setup, opts...)
			if err != nil {
				return err
			}

			uuid, err := repo.Config("annex.uuid")
			if err != nil {
				uuid = "unknown"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s (uuid %s)\n", repo.Path(), uuid)

			return nil
		},
	}

	cmd.Flags().StringVar(&version, "annex-version", "", "annex repository version")
	cmd.Flags().StringVar(&description, "description", "", "repository description")

	return cmd
}

func newVersionCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the annexctl and git-annex versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &cli.Config{GitPath: g.gitBinary(), SkipVersionCheck: true, Logger: g.log}

			found, err := cli.NewDiscoverer(cfg).Discover(cmd.Context())
			if err != nil {
				return err
			}

			version, err := cli.ProbeVersion(cmd.Context(), found, g.log)
			if err != nil {
				return fmt.Errorf("probe git-annex version: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "annexctl %s\n", Version)
			fmt.Fprintf(out, "git-annex %s\n", version)

			return nil
		},
	}
}

func newMetadataCommand(g *globals) *cobra.Command {
	var files bool

	cmd := &cobra.Command{
		Use:   "metadata KEY...",
		Short: "Print the metadata of keys or annexed files as JSON lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := g.open(cmd.Context())
			if err != nil {
				return err
			}

			meta, err := repo.Annex.Metadata(cmd.Context())
			if err != nil {
				return err
			}
			defer meta.Close()

			var failed []error

			for _, arg := range args {
				req := annex.MetadataRequest{Key: arg}
				if files {
					req = annex.MetadataRequest{File: arg}
				}

				record, err := meta.Do(req)
				if err != nil && !stderrors.Is(err, annex.ErrBatchFailed) {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), record.Raw)

				if err != nil {
					failed = append(failed, err)
				}
			}

			return stderrors.Join(failed...)
		},
	}

	cmd.Flags().BoolVar(&files, "file", false, "treat arguments as annexed file paths")

	return cmd
}

func newInfoCommand(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info TARGET...",
		Short: "Print git-annex info for remotes, directories or files",
		Long: `Print git-annex info for each target.

The text protocol prints nothing for unknown targets; use --json when a
target may not exist.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := g.open(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if asJSON {
				info, err := repo.Annex.InfoJSON(cmd.Context())
				if err != nil {
					return err
				}
				defer info.Close()

				for _, target := range args {
					record, err := info.Query(target)
					if err != nil {
						return err
					}

					fmt.Fprintln(out, record.Raw)
				}

				return nil
			}

			info, err := repo.Annex.Info(cmd.Context())
			if err != nil {
				return err
			}
			defer info.Close()

			for _, target := range args {
				lines, err := info.Query(target)
				if err != nil {
					return err
				}

				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per target")

	return cmd
}

func newLookupKeyCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "lookupkey FILE...",
		Short: "Print the git-annex key of annexed files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := g.open(cmd.Context())
			if err != nil {
				return err
			}

			lookup, err := repo.Annex.LookupKey(cmd.Context())
			if err != nil {
				return err
			}
			defer lookup.Close()

			var missing []error

			for _, file := range args {
				key, ok, err := lookup.Lookup(file)
				if err != nil {
					return err
				}

				if !ok {
					missing = append(missing, fmt.Errorf("%s is not an annexed file", file))

					continue
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", key, file)
			}

			return stderrors.Join(missing...)
		},
	}
}

func newMCPCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve git-annex queries as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := g.open(cmd.Context())
			if err != nil {
				return err
			}

			server, err := mcp.NewAnnexServer(repo, Version, g.log)
			if err != nil {
				return err
			}

			return server.Run(cmd.Context())
		},
	}
}
