package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/doeshing/termhelper/internal/infrastructure/cli"
)

func main() {
	// Ctrl-C cancels the in-flight request or subprocess.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
