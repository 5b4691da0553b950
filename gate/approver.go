package gate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Approver decides whether a proposed command is accepted. It is the
// external actor behind the gate: a human prompt or a policy.
type Approver interface {
	Approve(ctx context.Context, req protocol.ApprovalRequest) (protocol.ApprovalDecision, error)
}

// ApproverFunc adapts a function to the Approver interface.
type ApproverFunc func(ctx context.Context, req protocol.ApprovalRequest) (protocol.ApprovalDecision, error)

func (f ApproverFunc) Approve(ctx context.Context, req protocol.ApprovalRequest) (protocol.ApprovalDecision, error) {
	return f(ctx, req)
}

// ApproveAll accepts every request.
var ApproveAll Approver = ApproverFunc(func(context.Context, protocol.ApprovalRequest) (protocol.ApprovalDecision, error) {
	return protocol.ApprovalDecision{Approved: true, Reason: "Approved by policy", Timestamp: time.Now()}, nil
})

// DenyAll rejects every request.
var DenyAll Approver = ApproverFunc(func(context.Context, protocol.ApprovalRequest) (protocol.ApprovalDecision, error) {
	return protocol.ApprovalDecision{Approved: false, Reason: "Denied by policy", Timestamp: time.Now()}, nil
})

// PolicyApprover approves requests at or below MaxRisk unless the command
// matches a Deny pattern. An empty MaxRisk approves nothing.
type PolicyApprover struct {
	MaxRisk protocol.Risk
	Deny    []*regexp.Regexp
}

func (p PolicyApprover) Approve(_ context.Context, req protocol.ApprovalRequest) (protocol.ApprovalDecision, error) {
	now := time.Now()
	for _, re := range p.Deny {
		if re.MatchString(req.Command) {
			return protocol.ApprovalDecision{
				Reason:    fmt.Sprintf("Denied by policy: matches %s", re),
				Timestamp: now,
			}, nil
		}
	}
	if p.MaxRisk == "" || !req.Risk.AtMost(p.MaxRisk) {
		return protocol.ApprovalDecision{
			Reason:    fmt.Sprintf("Denied by policy: %s risk exceeds limit", req.Risk),
			Timestamp: now,
		}, nil
	}
	return protocol.ApprovalDecision{
		Approved:  true,
		Reason:    fmt.Sprintf("Approved by policy: %s risk", req.Risk),
		Timestamp: now,
	}, nil
}

// PromptApprover asks a person on a line-oriented terminal. Empty input,
// "n" and "no" deny; "y" and "yes" approve; anything else asks again.
//
// Reads block. The approval channel is single-flight, so a PromptApprover
// must sit behind a Gate in queue or reject mode.
type PromptApprover struct {
	in     *bufio.Reader
	out    io.Writer
	render func(protocol.ApprovalRequest) string
}

// NewPromptApprover creates a PromptApprover reading answers from in and
// writing the request summary and prompt to out. A nil render uses
// FormatRequest.
func NewPromptApprover(in io.Reader, out io.Writer, render func(protocol.ApprovalRequest) string) *PromptApprover {
	if render == nil {
		render = FormatRequest
	}
	return &PromptApprover{
		in:     bufio.NewReader(in),
		out:    out,
		render: render,
	}
}

func (p *PromptApprover) Approve(ctx context.Context, req protocol.ApprovalRequest) (protocol.ApprovalDecision, error) {
	fmt.Fprintln(p.out, p.render(req))

	for {
		if err := ctx.Err(); err != nil {
			return protocol.ApprovalDecision{}, err
		}

		fmt.Fprint(p.out, "Approve command execution? [y/N]: ")
		line, err := p.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return protocol.ApprovalDecision{}, fmt.Errorf("read approval answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return protocol.ApprovalDecision{Approved: true, Reason: "User approved", Timestamp: time.Now()}, nil
		case "", "n", "no":
			return protocol.ApprovalDecision{Approved: false, Reason: "User denied", Timestamp: time.Now()}, nil
		}
		if err == io.EOF {
			return protocol.ApprovalDecision{}, fmt.Errorf("read approval answer: %w", err)
		}
	}
}

// FormatRequest renders a plain-text summary of req.
func FormatRequest(req protocol.ApprovalRequest) string {
	rule := strings.Repeat("=", 60)
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("SECURITY APPROVAL REQUIRED\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Intent:  %s\n", req.Intent)
	fmt.Fprintf(&b, "Command: %s\n", req.Command)
	fmt.Fprintf(&b, "Risk:    %s\n", strings.ToUpper(string(req.Risk)))
	b.WriteString(rule)
	return b.String()
}
