package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/ucf/orchestrator"
)

const helpText = `Commands:
  /help             Show this help
  /history          Show the conversation
  /clear            Clear the conversation
  /extensions       List installed extensions
  /actions          List registered actions
  /analyze <text>   Explain how a message would be routed
  /backend [name]   Show the active backend, or switch to a named one
  /run <action>     Run a registered action
  /exit             Leave

Prefix a message with @strategic or @implementation to choose its lane.`

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in := bufio.NewReader(os.Stdin)
	out := cmd.OutOrStdout()
	r := newRenderer(out)

	o, err := newOrchestrator(in, out, r)
	if err != nil {
		return err
	}
	defer closeOrchestrator(o)

	fmt.Fprintf(out, "ucf chat using the %s backend. Type /help for commands.\n", backendLabel(o))
	return newREPL(o, in, out, r).run(ctx)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in := bufio.NewReader(os.Stdin)
	out := cmd.OutOrStdout()
	r := newRenderer(out)

	o, err := newOrchestrator(in, out, r)
	if err != nil {
		return err
	}
	defer closeOrchestrator(o)

	reply, err := o.Chat(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, r.reply(reply))
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	r := newRenderer(out)

	c, err := newClassifier()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, r.analysis(c.Analyze(strings.Join(args, " "))))
	return nil
}

// repl reads messages and slash commands line by line.
type repl struct {
	o   *orchestrator.Orchestrator
	in  *bufio.Reader
	out io.Writer
	r   *renderer
}

func newREPL(o *orchestrator.Orchestrator, in *bufio.Reader, out io.Writer, r *renderer) *repl {
	return &repl{o: o, in: in, out: out, r: r}
}

func (p *repl) run(ctx context.Context) error {
	for {
		fmt.Fprint(p.out, "> ")

		line, err := p.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(p.out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if done := p.command(ctx, line); done {
				return nil
			}
			continue
		}

		reply, chatErr := p.o.Chat(ctx, line)
		if chatErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(p.out, p.r.err(chatErr))
		} else {
			fmt.Fprintln(p.out, p.r.reply(reply))
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

// command handles one slash command and reports whether to leave.
func (p *repl) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/exit", "/quit":
		return true

	case "/help":
		fmt.Fprintln(p.out, helpText)

	case "/history":
		history := p.o.History()
		if len(history) == 0 {
			fmt.Fprintln(p.out, "No messages yet.")
		}
		for _, msg := range history {
			who := "you"
			if msg.Lane != "" {
				who = string(msg.Lane)
			}
			fmt.Fprintf(p.out, "%s %s: %s\n", p.r.dim(msg.Timestamp.Format("15:04:05")), who, msg.Content)
		}

	case "/clear":
		p.o.ClearHistory()
		fmt.Fprintln(p.out, "Conversation cleared.")

	case "/extensions":
		for _, ext := range p.o.Extensions() {
			fmt.Fprintf(p.out, "  %s v%s\n", ext.Name, ext.Version)
		}

	case "/actions":
		for _, a := range p.o.Actions() {
			fmt.Fprintf(p.out, "  %-10s %s\n", a.Name, a.Description)
		}

	case "/analyze":
		if arg == "" {
			fmt.Fprintln(p.out, "Usage: /analyze <text>")
			break
		}
		fmt.Fprintln(p.out, p.r.analysis(p.o.AnalyzeRouting(arg)))

	case "/backend":
		if arg == "" {
			fmt.Fprintf(p.out, "Active backend: %s\n", backendLabel(p.o))
			for _, info := range p.o.Backends() {
				fmt.Fprintf(p.out, "  %-10s %s %s\n", info.Name, info.Provider, info.Model)
			}
			break
		}
		if err := p.o.UseBackend(arg); err != nil {
			fmt.Fprintln(p.out, p.r.err(err))
			break
		}
		fmt.Fprintf(p.out, "Switched to %s.\n", arg)

	case "/run":
		if arg == "" {
			fmt.Fprintln(p.out, "Usage: /run <action>")
			break
		}
		output, err := p.o.RunAction(ctx, arg)
		if err != nil {
			fmt.Fprintln(p.out, p.r.err(err))
			break
		}
		fmt.Fprintln(p.out, output)

	default:
		fmt.Fprintf(p.out, "Unknown command %s. Type /help for commands.\n", name)
	}
	return false
}

func backendLabel(o *orchestrator.Orchestrator) string {
	if b := o.Backend(); b != nil {
		return b.Name()
	}
	return "(none)"
}
