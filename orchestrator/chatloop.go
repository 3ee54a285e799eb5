package orchestrator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/effective-security/xlog"
	"github.com/fatih/color"
)

const (
	// QuitCommand ends the chat loop, it is case-insensitive
	QuitCommand = "quit"

	promptText = "\nQuery: "
)

var (
	colorPrompt = color.New(color.Bold, color.FgCyan)
	colorError  = color.New(color.FgRed)
)

// ChatLoop reads queries line by line from in and prints the answers to out,
// until quit, the end of input or the context is cancelled.
// A failed query is printed and the loop continues.
func (o *Orchestrator) ChatLoop(ctx context.Context, in io.Reader, out io.Writer) error {
	done := make(chan struct{})
	defer close(done)

	lines, scanErr := scanLines(in, done)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		colorPrompt.Fprint(out, promptText)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return <-scanErr
			}
			line = l
		}

		query := strings.TrimSpace(line)
		if strings.EqualFold(query, QuitCommand) {
			logger.ContextKV(ctx, xlog.DEBUG, "status", "quit")
			return nil
		}
		if query == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		answer, err := o.ProcessQuery(ctx, query)
		if err != nil {
			colorError.Fprintf(out, "\nError: %s\n", err.Error())
			continue
		}
		fmt.Fprintln(out, "\n"+answer)
	}
}

// scanLines reads the lines of in on a separate goroutine,
// so a blocked read does not hold the caller past cancellation.
// The lines channel is closed at the end of input, then the scan error is sent.
func scanLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}
