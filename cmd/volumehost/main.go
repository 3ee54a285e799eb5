// Command volumehost serves the set_volume tool over MCP on stdio.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpvolume/callbacks"
	"github.com/effective-security/mcpvolume/mcp"
	"github.com/effective-security/mcpvolume/pkg/config"
	"github.com/effective-security/mcpvolume/pkg/metricskey"
	"github.com/effective-security/mcpvolume/pkg/mixer"
	"github.com/effective-security/mcpvolume/tools"
	"github.com/effective-security/mcpvolume/tools/volume"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpvolume", "volumehost")

type cli struct {
	Config   string `short:"c" help:"Path to the YAML config file."`
	Name     string `help:"Server name reported on handshake."`
	Mixer    string `help:"Mixer endpoint: system or memory."`
	LogLevel string `name:"log-level" default:"INFO" help:"Log level: DEBUG, INFO, WARNING or ERROR."`
}

type app struct {
	errOut io.Writer
	// transport is stdio when nil
	transport mcpsdk.Transport
	exit      func(int)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// stdout carries the protocol, the logs go to stderr
	code := realMain(ctx, os.Args[1:], &app{
		errOut: os.Stderr,
		exit:   os.Exit,
	})
	stop()
	os.Exit(code)
}

func realMain(ctx context.Context, args []string, a *app) int {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("volumehost"),
		kong.Description("MCP tool host with the set_volume tool."),
		kong.Writers(a.errOut, a.errOut),
		kong.Exit(a.exit),
	)
	if err != nil {
		fmt.Fprintf(a.errOut, "volumehost: %s\n", err.Error())
		return 1
	}
	if _, err = parser.Parse(args); err != nil {
		fmt.Fprintf(a.errOut, "volumehost: error: %s\n", err.Error())
		return 2
	}
	if err = config.SetupLogging(a.errOut, c.LogLevel); err != nil {
		fmt.Fprintf(a.errOut, "volumehost: error: %s\n", err.Error())
		return 2
	}

	if err = c.run(ctx, a); err != nil {
		logger.KV(xlog.ERROR, "status", "failed", "err", err.Error())
		fmt.Fprintf(a.errOut, "volumehost: error: %s\n", err.Error())
		return 1
	}
	return 0
}

func (c *cli) run(ctx context.Context, a *app) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Name != "" {
		cfg.Host.Name = c.Name
	}
	if c.Mixer != "" {
		cfg.Host.Mixer.Kind = c.Mixer
	}

	msink, err := metricskey.NewInmemSink()
	if err != nil {
		return err
	}

	ep, err := mixer.Open(cfg.Host.Mixer)
	if err != nil {
		return err
	}

	tool, err := volume.New(ep)
	if err != nil {
		_ = ep.Close()
		return err
	}
	registry, err := tools.NewRegistry(tool)
	if err != nil {
		_ = tool.Close()
		return err
	}
	registry.WithCallback(callbacks.NewPackageLogger(logger))

	srv, err := mcp.NewServer(cfg.Host.ServerConfig, registry)
	if err != nil {
		_ = registry.Close()
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.KV(xlog.ERROR, "status", "close_failed", "err", err.Error())
		}
	}()

	logger.KV(xlog.INFO,
		"status", "starting",
		"name", srv.Name(),
		"mixer", cfg.Host.Mixer.Kind,
	)

	if a.transport == nil {
		err = srv.RunStdio(ctx)
	} else {
		err = srv.Run(ctx, a.transport)
	}
	if err != nil {
		return errors.WithMessage(err, "server stopped")
	}
	logger.KV(xlog.INFO,
		"status", "stopped",
		"name", srv.Name(),
		"metrics", strings.Join(metricskey.Counters(msink), ", "),
	)
	return nil
}
