// Command npk unpacks NXPK containers and recovers their scripts.
package main

import (
	"context"
	"os"
	"os/signal"

	"charm.land/fang/v2"

	"github.com/meigma/npk/internal/cmd"
	"github.com/meigma/npk/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := fang.Execute(ctx, cmd.NewRootCmd(),
		fang.WithVersion(version.GetFullVersion()),
		fang.WithCommit(version.GetCommit()),
	)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
