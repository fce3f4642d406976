/*
Package cli provides helpers shared by the awqat-gateway commands.

Exit codes:

	err := rootCmd.Execute()
	os.Exit(cli.ExitCode(err)) // 0 ok, 2 configuration error, 1 anything else

Output formatting for the validate and version commands:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal handling for graceful shutdown on SIGINT/SIGTERM:

	ctx, cancel := cli.SetupSignalHandler(logger)
	defer cancel()
*/
package cli
