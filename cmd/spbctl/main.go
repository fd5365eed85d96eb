package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/procedurebuilder/internal/admin"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := logging.NewJSONLogger(os.Stderr, slog.LevelWarn)
	cmd := admin.NewRootCommand(admin.OpenCore(l))

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
