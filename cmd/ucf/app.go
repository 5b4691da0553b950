package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/tailored-agentic-units/ucf/backend"
	"github.com/tailored-agentic-units/ucf/extension"
	anthropicext "github.com/tailored-agentic-units/ucf/extensions/anthropic"
	"github.com/tailored-agentic-units/ucf/extensions/audit"
	loggerext "github.com/tailored-agentic-units/ucf/extensions/logger"
	"github.com/tailored-agentic-units/ucf/extensions/metrics"
	"github.com/tailored-agentic-units/ucf/extensions/patterns"
	"github.com/tailored-agentic-units/ucf/gate"
	"github.com/tailored-agentic-units/ucf/lane"
	"github.com/tailored-agentic-units/ucf/orchestrator"
)

func loadConfig() (*orchestrator.Config, error) {
	if configFile == "" {
		cfg := orchestrator.DefaultConfig()
		return &cfg, nil
	}
	cfg, err := orchestrator.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newClassifier builds the lane classifier alone, from the configured lanes
// plus the --patterns file when one is given.
func newClassifier() (*lane.Classifier, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	lanes := cfg.Lanes
	if patternFile != "" {
		set, err := lane.LoadPatternFile(patternFile)
		if err != nil {
			return nil, err
		}
		lanes.Merge(set)
	}
	return lane.NewFromConfig(&lanes)
}

// selectApprover picks the approval actor. Without a terminal there is no
// one to ask, so commands are denied.
func selectApprover(in *bufio.Reader, out io.Writer, r *renderer) gate.Approver {
	switch {
	case autoApprove:
		return gate.ApproveAll
	case term.IsTerminal(int(os.Stdin.Fd())):
		return gate.NewPromptApprover(in, out, r.approval)
	default:
		return gate.DenyAll
	}
}

func selectExtensions() []extension.Extension {
	exts := []extension.Extension{
		loggerext.New(logger, loggerOptions()...),
		metrics.New(),
	}
	if patternFile != "" {
		exts = append(exts, patterns.New(patternFile, patterns.WithWatch(), patterns.WithLogger(logger)))
	}
	if auditPath != "" {
		exts = append(exts, audit.New(auditPath, audit.WithLogger(logger)))
	}
	if useAnthropic {
		exts = append(exts, anthropicext.New(backend.Config{}))
	}
	return exts
}

func loggerOptions() []loggerext.Option {
	if verbose {
		return []loggerext.Option{loggerext.WithContent()}
	}
	return nil
}

// newOrchestrator builds the orchestrator from config and flags. Answers to
// approval prompts are read from in, which the REPL shares.
func newOrchestrator(in *bufio.Reader, out io.Writer, r *renderer) (*orchestrator.Orchestrator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if backendName != "" {
		cfg.Backend.Provider = backendName
	}
	if noGate {
		cfg.Gate.Disabled = true
	}
	if cfg.Observer == "" {
		cfg.Observer = "zap"
	}

	return orchestrator.New(cfg,
		orchestrator.WithApprover(selectApprover(in, out, r)),
		orchestrator.WithExtensions(selectExtensions()...),
	)
}

func closeOrchestrator(o *orchestrator.Orchestrator) {
	if err := o.Close(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
}
