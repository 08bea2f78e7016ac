package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alios-things/aos-cube/cmd/aos"
	"github.com/alios-things/aos-cube/pkg/ui"
	"github.com/alios-things/aos-cube/pkg/ui/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := aos.NewRootCmd()
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return
	}

	printer := output.NewPrinter(os.Stdout, os.Stderr, output.WithColor(ui.ColorEnabled(os.Stderr)))
	printer.Error(err)

	code := aos.ExitCode(err)
	if code == aos.ExitUsage && cmd != nil {
		_ = cmd.Usage()
	}
	stop()
	os.Exit(code)
}
