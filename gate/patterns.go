package gate

import "regexp"

// Tables are ordered. Risk assessment stops at the first match, so earlier
// entries take precedence.

// dangerousPatterns is the high-risk subset of commandPatterns.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^rm\s`),
	regexp.MustCompile(`^sudo\s`),
	regexp.MustCompile(`^chmod\s`),
	regexp.MustCompile(`^chown\s`),
	regexp.MustCompile(`^kill\s`),
	regexp.MustCompile(`^pkill\s`),
	regexp.MustCompile(`^systemctl\s`),
	regexp.MustCompile(`^service\s`),
	regexp.MustCompile(`^apt\s`),
	regexp.MustCompile(`^yum\s`),
	regexp.MustCompile(`^brew\s`),
	regexp.MustCompile(`^npm\s+i`),
	regexp.MustCompile(`^npm\s+install`),
	regexp.MustCompile(`^pip\s+install`),
	regexp.MustCompile(`^curl\s`),
	regexp.MustCompile(`^wget\s`),
	regexp.MustCompile(`>.*/`),
	regexp.MustCompile(`\|\s*sudo`),
}

var mediumRiskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`npm\s+run`),
	regexp.MustCompile(`node\s`),
	regexp.MustCompile(`python\s`),
	regexp.MustCompile(`git\s+push`),
	regexp.MustCompile(`git\s+commit`),
}

// commandPatterns is the broad command-detection set: every dangerous
// pattern followed by common read-only and file commands.
var commandPatterns = append(append([]*regexp.Regexp{}, dangerousPatterns...),
	regexp.MustCompile(`^ls\s`),
	regexp.MustCompile(`^cd\s`),
	regexp.MustCompile(`^pwd$`),
	regexp.MustCompile(`^echo\s`),
	regexp.MustCompile(`^cat\s`),
	regexp.MustCompile(`^grep\s`),
	regexp.MustCompile(`^find\s`),
	regexp.MustCompile(`^mkdir\s`),
	regexp.MustCompile(`^touch\s`),
	regexp.MustCompile(`^cp\s`),
	regexp.MustCompile(`^mv\s`),
)

var (
	// An opening fence sits on its own line and may carry a language label.
	openFence  = regexp.MustCompile("^[ \t]*```([A-Za-z0-9_+-]*)[ \t]*$")
	inlineSpan = regexp.MustCompile("`([^`]+)`")
)

// Only shell or unlabeled fences carry commands.
var shellLabels = map[string]bool{"": true, "bash": true, "sh": true, "shell": true}
