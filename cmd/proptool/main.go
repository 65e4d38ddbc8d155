// Command proptool inspects, edits and backs up property table catalogs.
//
//	proptool -command inspect -dir data/segment-0001
//	proptool -command set -dir data/segment-0001 -property price -pos 42 -value 19.99
//	proptool -command backup -dir data/segment-0001 -store /mnt/backups
//	proptool -command restore -backup <id> -dir /tmp/restored -store /mnt/backups
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulldump/goconfig"

	"github.com/hupe1980/proptable"
)

func main() {
	c := Default()
	goconfig.Read(&c)

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		_ = e.Encode(c)
	}

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := proptable.NewTextLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c, logger, os.Stdout); err != nil {
		logger.Error("command failed", "command", c.Command, "error", err)
		stop()
		os.Exit(1)
	}
}
