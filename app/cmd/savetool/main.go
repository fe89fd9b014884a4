// Command savetool inspects and maintains save files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mzki/erasave/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.NewApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app.Name, err)
		stop()
		os.Exit(1)
	}
}
