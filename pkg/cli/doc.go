/*
Package cli provides command-line interface utilities for Tunegate.

The cli package includes output formatters, progress reporters, error
types, and common CLI helpers used by the tunegate command.

Output Formatting:

The cli package supports text and JSON output formats for displaying
command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Progress Reporting:

For long-running operations, use the progress reporter:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(totalItems)
	for i := 0; i < totalItems; i++ {
		// Do work
		progress.Update(i + 1)
	}
	progress.Finish()

Signal Handling:

Commands that run until interrupted derive their work from a
signal-aware context:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on Ctrl+C

Errors:

Commands wrap failures in ConfigError or CommandError so the entry
point can map them to exit codes with ExitCode.
*/
package cli
