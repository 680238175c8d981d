// Package annex drives git-annex through its command line and batch protocols.
//
// The package spawns `git annex` as a subordinate process, feeds it request
// lines and splits its output into responses. One-shot commands run through
// a Runner; batch protocols keep one long-lived Process per session.
//
// # Repositories
//
// Open attaches git-annex functionality to an existing git repository:
//
//	repo, err := annex.Open(ctx, "/srv/photos", annex.WithLogger(slog.Default()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	uuid, err := repo.Config("annex.uuid")
//
// Init runs `git annex init` first:
//
//	repo, err := annex.Init(ctx, "/srv/photos", annex.InitOptions{Description: "nas"})
//
// # Batch Sessions
//
// Each batch protocol runs in its own session. Sessions are driven
// synchronously by one goroutine and must be closed:
//
//	meta, err := repo.Annex.Metadata(ctx)
//	if err != nil {
//	    return err
//	}
//	defer meta.Close()
//
//	record, err := meta.Get("SHA256E-s0--0")
//
// # Processes
//
// For protocols without a wrapper, WithProcess starts any command, hands the
// session to a callback and always closes it:
//
//	err := annex.WithProcess(ctx, annex.NewCommand(dir, "git", "annex", "find", "--batch"),
//	    func(p *annex.Process) error {
//	        _, err := p.Communicate("photo.jpg")
//	        return err
//	    },
//	)
//
// # Error Handling
//
// A command that cannot be spawned fails with a LaunchError. A one-shot
// command exiting non-zero fails with a ProcessError carrying its exit code
// and output. A session whose process exits or closes stdout while a
// response is expected fails with a TerminatedError:
//
//	var terminated *annex.TerminatedError
//	if errors.As(err, &terminated) {
//	    fmt.Println(terminated.Stderr)
//	}
package annex
