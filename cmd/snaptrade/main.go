// Command snaptrade talks to the SnapTrade API from the terminal and can host
// a local, signature-verifying sandbox of it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp(os.Stdout, os.Stderr)
	err := newCommand(a).Run(ctx, os.Args)
	if err != nil {
		writeErr(os.Stderr, err)
	}

	stop()
	os.Exit(exitCode(err))
}
