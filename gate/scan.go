package gate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// DefaultIntent describes a request created without an explicit intent.
const DefaultIntent = "Execute system command"

// IsCommand reports whether s, trimmed, matches the command pattern set.
func IsCommand(s string) bool {
	return matchesAny(commandPatterns, strings.TrimSpace(s))
}

// Detect reports whether text proposes a command. The whole trimmed text is
// checked, and so is the body of every shell or unlabeled fenced block and
// every inline code span, since completions usually embed commands in prose.
func Detect(text string) bool {
	if IsCommand(text) {
		return true
	}
	for _, block := range codeBlocks(text) {
		if block.shell() && IsCommand(block.body) {
			return true
		}
	}
	for _, span := range inlineSpans(text) {
		if IsCommand(span) {
			return true
		}
	}
	return false
}

// Extract returns the literal command proposed by text. Rules are applied in
// priority order and the first that applies wins:
//
//  1. the first shell or unlabeled fenced code block, trimmed
//  2. the first inline code span whose content is a command, trimmed
//  3. the whole trimmed text, when it is a command
func Extract(text string) (string, bool) {
	for _, block := range codeBlocks(text) {
		if block.shell() {
			return strings.TrimSpace(block.body), true
		}
	}
	for _, span := range inlineSpans(text) {
		if IsCommand(span) {
			return strings.TrimSpace(span), true
		}
	}
	if IsCommand(text) {
		return strings.TrimSpace(text), true
	}
	return "", false
}

// AssessRisk assigns a tier to command. The dangerous table is checked first
// and its first match means high; otherwise the first medium match means
// medium; otherwise low.
func AssessRisk(command string) protocol.Risk {
	clean := strings.TrimSpace(command)
	if matchesAny(dangerousPatterns, clean) {
		return protocol.RiskHigh
	}
	if matchesAny(mediumRiskPatterns, clean) {
		return protocol.RiskMedium
	}
	return protocol.RiskLow
}

// NewRequest builds an ApprovalRequest for command with a fresh id. An empty
// intent becomes DefaultIntent.
func NewRequest(command, intent string) protocol.ApprovalRequest {
	return newRequestAt(command, intent, time.Now())
}

func newRequestAt(command, intent string, at time.Time) protocol.ApprovalRequest {
	if intent == "" {
		intent = DefaultIntent
	}
	return protocol.ApprovalRequest{
		ID:        fmt.Sprintf("icerc-%s", uuid.NewString()),
		Intent:    intent,
		Command:   command,
		Risk:      AssessRisk(command),
		Timestamp: at,
	}
}

// codeBlock is a fenced block located by codeBlocks. start and end bound the
// whole block, fences included.
type codeBlock struct {
	label      string
	body       string
	start, end int
}

func (b codeBlock) shell() bool {
	return shellLabels[b.label]
}

// codeBlocks scans text line by line, pairing each opening fence with the
// next line that is a bare closing fence. A fence left open runs to the end
// of the text, as happens when a completion is cut off mid-block.
func codeBlocks(text string) []codeBlock {
	var (
		blocks    []codeBlock
		open      *codeBlock
		bodyStart int
		pos       int
	)

	for _, line := range strings.SplitAfter(text, "\n") {
		content := strings.TrimRight(line, "\r\n")
		switch {
		case open == nil:
			if m := openFence.FindStringSubmatch(content); m != nil {
				open = &codeBlock{label: strings.ToLower(m[1]), start: pos}
				bodyStart = pos + len(line)
			}
		case strings.TrimSpace(content) == "```":
			open.body = text[bodyStart:pos]
			open.end = pos + len(line)
			blocks = append(blocks, *open)
			open = nil
		}
		pos += len(line)
	}

	if open != nil {
		open.body = text[bodyStart:]
		open.end = len(text)
		blocks = append(blocks, *open)
	}
	return blocks
}

// inlineSpans returns inline code span contents outside of fenced blocks.
func inlineSpans(text string) []string {
	var b strings.Builder
	last := 0
	for _, block := range codeBlocks(text) {
		b.WriteString(text[last:block.start])
		last = block.end
	}
	b.WriteString(text[last:])
	stripped := b.String()

	matches := inlineSpan.FindAllStringSubmatch(stripped, -1)
	spans := make([]string, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, m[1])
	}
	return spans
}

func matchesAny(table []*regexp.Regexp, s string) bool {
	for _, re := range table {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
