package lane

import (
	"regexp"

	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// DefaultLane receives input that neither table wins, including input that
// matches nothing. It is the non-executing lane.
const DefaultLane = protocol.LaneStrategic

// Explicit lane tags. Tags are matched case-insensitively anywhere in the
// content and are checked in declaration order.
var tags = []struct {
	tag  string
	lane protocol.Lane
}{
	{tag: "@strategic", lane: protocol.LaneStrategic},
	{tag: "@implementation", lane: protocol.LaneImplementation},
}

// Tag returns the explicit tag that routes content to l, or "" for an
// unknown lane.
func Tag(l protocol.Lane) string {
	for _, t := range tags {
		if t.lane == l {
			return t.tag
		}
	}
	return ""
}

// Patterns are evaluated against lowercased, trimmed content.
var strategicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(architect|architecture|design|strategy|strategic|plan|planning)\b`),
	regexp.MustCompile(`(?i)\b(should\s+i|how\s+to|what\s+if|which\s+approach)\b`),
	regexp.MustCompile(`(?i)\b(best\s+practice|recommend|advice|suggest)\b`),
	regexp.MustCompile(`(?i)\b(structure|organize|pattern)\b`),
	regexp.MustCompile(`(?i)\b(framework|architecture)\s+(design|pattern|choice)\b`),
	regexp.MustCompile(`(?i)\b(evaluate|compare|pros\s+and\s+cons|trade-?off)\b`),
	regexp.MustCompile(`(?i)\b(workflow|process|methodology)\b`),
	regexp.MustCompile(`(?i)^(should|how|what|which|why|when)\s+`),
}

var implementationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(implement|code|create|build|write|develop)\b`),
	regexp.MustCompile(`(?i)\b(fix|debug|solve|patch|repair)\b`),
	regexp.MustCompile(`(?i)\b(install|setup|configure|deploy)\b`),
	regexp.MustCompile(`(?i)\b(function|class|method|api|endpoint)\b`),
	regexp.MustCompile(`(?i)\b(test|testing|unit\s+test|integration)\b`),
	regexp.MustCompile(`(?i)\b(refactor|optimize|improve\s+performance)\b`),
	regexp.MustCompile(`(?i)\b(run|execute|command|npm|git|bash)\b`),
	regexp.MustCompile(`(?i)\b(file|directory|folder|create\s+file|write\s+to)\b`),
}
