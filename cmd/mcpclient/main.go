// Command mcpclient connects a chat model to the MCP tool hosts and runs the interactive chat.
package main

import (
	"bytes"
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
	"github.com/effective-security/mcpvolume/orchestrator"
	"github.com/effective-security/mcpvolume/pkg/config"
	"github.com/effective-security/mcpvolume/pkg/llmfactory"
	"github.com/effective-security/mcpvolume/pkg/llms"
	"github.com/effective-security/mcpvolume/pkg/metricskey"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpvolume", "mcpclient")

type cli struct {
	Config     string   `short:"c" help:"Path to the YAML config file."`
	EnvFile    string   `name:"env-file" default:".env" help:"Path to the .env file, loaded if it exists."`
	Model      string   `short:"m" help:"Chat model id, overrides the config and OPENAI_MODEL."`
	MaxTokens  int      `name:"max-tokens" help:"Max output tokens of each model call."`
	Verbose    bool     `short:"v" help:"Print the conversation messages and tool dispatch."`
	Scratchpad string   `help:"Path to write the session transcript and stats on exit."`
	LogLevel   string   `name:"log-level" default:"WARNING" help:"Log level: DEBUG, INFO, WARNING or ERROR."`
	Servers    []string `arg:"" optional:"" name:"server-script" help:"Paths to the tool host scripts, .py or .js."`
}

type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	spawn  orchestrator.SpawnFunc
	exit   func(int)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := realMain(ctx, os.Args[1:], &app{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		spawn:  orchestrator.Spawn,
		exit:   os.Exit,
	})
	stop()
	os.Exit(code)
}

func realMain(ctx context.Context, args []string, a *app) int {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("mcpclient"),
		kong.Description("Chat with a model that can call the tools of the MCP tool hosts."),
		kong.Writers(a.out, a.errOut),
		kong.Exit(a.exit),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(a.errOut, "mcpclient: %s\n", err.Error())
		return 1
	}
	if _, err = parser.Parse(args); err != nil {
		fmt.Fprintf(a.errOut, "mcpclient: error: %s\n", err.Error())
		return 2
	}

	if err = config.SetupLogging(a.errOut, c.LogLevel); err != nil {
		fmt.Fprintf(a.errOut, "mcpclient: error: %s\n", err.Error())
		return 2
	}

	if err = c.run(ctx, a); err != nil {
		fmt.Fprintf(a.errOut, "mcpclient: error: %s\n", err.Error())
		return 1
	}
	return 0
}

func (c *cli) run(ctx context.Context, a *app) error {
	if err := config.LoadDotEnv(c.EnvFile); err != nil {
		return err
	}
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	servers := c.Servers
	if len(servers) == 0 {
		servers = cfg.Client.Servers
	}
	if len(servers) == 0 {
		return errors.New("usage: mcpclient <path_to_server_script>...")
	}

	if err = cfg.RequireToken(); err != nil {
		return err
	}

	factory := llmfactory.New(&cfg.LLM)
	var llm llms.Model
	if c.Model != "" {
		llm, err = factory.ModelByName(c.Model)
	} else {
		llm, err = factory.ComponentModel(config.ClientComponent, cfg.Client.Model)
	}
	if err != nil {
		return errors.WithMessage(err, "failed to create LLM")
	}

	msink, err := metricskey.NewInmemSink()
	if err != nil {
		return err
	}

	ocfg := cfg.Client.Config
	ocfg.Model = values.StringsCoalesce(c.Model, cfg.Client.Model, modelName(llm))
	ocfg.MaxTokens = values.NumbersCoalesce(c.MaxTokens, cfg.Client.MaxTokens)

	scratchpad := callbacks.NewScratchpad(callbacks.ModeDefault)
	cb := callbacks.NewFanout(callbacks.NewPackageLogger(logger), scratchpad)
	if c.Verbose {
		cb.Add(callbacks.NewPrinter(a.out, callbacks.ModeVerbose))
	}

	o, err := orchestrator.New(llm, ocfg,
		orchestrator.WithCallback(cb),
		orchestrator.WithSpawner(a.spawn),
		orchestrator.WithOutput(a.out),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := o.Close(); err != nil {
			logger.KV(xlog.ERROR, "status", "close_failed", "err", err.Error())
		}
		c.report(scratchpad, metricskey.Counters(msink))
	}()

	if err = o.ConnectToServers(ctx, servers...); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "\nMCP Client Started!")
	fmt.Fprintf(a.out, "Type your queries or '%s' to exit.\n", orchestrator.QuitCommand)

	err = o.ChatLoop(ctx, a.in, a.out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *cli) report(sp *callbacks.Scratchpad, counters []string) {
	stats := sp.Stats()
	logger.KV(xlog.INFO,
		"status", "chat_ended",
		"session_id", sp.SessionID(),
		"queries", stats.Queries,
		"failed", stats.QueriesFailed,
		"llm_calls", stats.LLMCalls,
		"tokens", stats.LLMTotalTokens,
		"dispatches", stats.Dispatches,
		"dropped", stats.DispatchesDropped,
		"metrics", strings.Join(counters, ", "),
	)
	if c.Scratchpad == "" {
		return
	}

	var buf bytes.Buffer
	buf.Write(sp.Bytes())
	buf.WriteString("\n*** Metrics ***\n")
	for _, line := range counters {
		buf.WriteString(line + "\n")
	}
	if err := os.WriteFile(c.Scratchpad, buf.Bytes(), 0o600); err != nil {
		logger.KV(xlog.ERROR, "status", "scratchpad_failed", "file", c.Scratchpad, "err", err.Error())
	}
}

func modelName(llm llms.Model) string {
	if m, ok := llm.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}
