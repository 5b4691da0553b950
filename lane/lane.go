// Package lane routes free text to a handling lane.
//
// Classification is deterministic and total: an explicit lane tag wins
// outright, otherwise each lane scores one point per matching pattern in its
// ordered table, the strictly higher score wins, and ties go to DefaultLane.
//
//	c := lane.New()
//	l := c.Classify("Implement a cache eviction function") // implementation
package lane

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/ucf/core/protocol"
)

// Match records one pattern that contributed to a lane's score.
type Match struct {
	Lane    protocol.Lane
	Pattern string
}

// Analysis is the diagnostic view of a classification. Lane always equals
// what Classify returns for the same content and tables. Tagged is true when
// an explicit tag decided the lane; scores are still reported in that case.
type Analysis struct {
	Lane    protocol.Lane
	Tagged  bool
	Matches []Match
	Scores  map[protocol.Lane]int
}

// Classifier holds one ordered pattern table per lane. Tables only grow:
// patterns added at runtime take part in later classifications. All methods
// are safe for concurrent use.
type Classifier struct {
	mu     sync.RWMutex
	tables map[protocol.Lane][]*regexp.Regexp
}

// New creates a Classifier seeded with the built-in pattern tables.
func New() *Classifier {
	return &Classifier{
		tables: map[protocol.Lane][]*regexp.Regexp{
			protocol.LaneStrategic:      slices.Clone(strategicPatterns),
			protocol.LaneImplementation: slices.Clone(implementationPatterns),
		},
	}
}

// Classify returns the lane for content. It never fails.
func (c *Classifier) Classify(content string) protocol.Lane {
	clean := normalize(content)
	if l, ok := taggedLane(clean); ok {
		return l
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	strategic := score(c.tables[protocol.LaneStrategic], clean, nil)
	implementation := score(c.tables[protocol.LaneImplementation], clean, nil)
	return decide(strategic, implementation)
}

// Analyze classifies content and reports every matching pattern and the
// per-lane scores. Implementation patterns are listed before strategic ones.
func (c *Classifier) Analyze(content string) Analysis {
	clean := normalize(content)

	c.mu.RLock()
	var matches []Match
	implementation := score(c.tables[protocol.LaneImplementation], clean, func(re *regexp.Regexp) {
		matches = append(matches, Match{Lane: protocol.LaneImplementation, Pattern: re.String()})
	})
	strategic := score(c.tables[protocol.LaneStrategic], clean, func(re *regexp.Regexp) {
		matches = append(matches, Match{Lane: protocol.LaneStrategic, Pattern: re.String()})
	})
	c.mu.RUnlock()

	a := Analysis{
		Matches: matches,
		Scores: map[protocol.Lane]int{
			protocol.LaneStrategic:      strategic,
			protocol.LaneImplementation: implementation,
		},
	}

	if l, ok := taggedLane(clean); ok {
		a.Lane = l
		a.Tagged = true
		return a
	}
	a.Lane = decide(strategic, implementation)
	return a
}

// AddPattern appends re to the table for l.
func (c *Classifier) AddPattern(l protocol.Lane, re *regexp.Regexp) error {
	if re == nil {
		return ErrNilPattern
	}
	if !protocol.IsValid(string(l)) {
		return fmt.Errorf("%w: %s", ErrUnknownLane, l)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[l] = append(c.tables[l], re)
	return nil
}

// AddExpr compiles expr and appends it to the table for l.
func (c *Classifier) AddExpr(l protocol.Lane, expr string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return c.AddPattern(l, re)
}

// Patterns returns a copy of the table for l in evaluation order. The
// returned slice is independent of the classifier's table.
func (c *Classifier) Patterns(l protocol.Lane) []*regexp.Regexp {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tables[l])
}

func normalize(content string) string {
	return strings.ToLower(strings.TrimSpace(content))
}

func taggedLane(clean string) (protocol.Lane, bool) {
	for _, t := range tags {
		if strings.Contains(clean, t.tag) {
			return t.lane, true
		}
	}
	return "", false
}

func score(table []*regexp.Regexp, clean string, onMatch func(*regexp.Regexp)) int {
	n := 0
	for _, re := range table {
		if re.MatchString(clean) {
			n++
			if onMatch != nil {
				onMatch(re)
			}
		}
	}
	return n
}

func decide(strategic, implementation int) protocol.Lane {
	if implementation > strategic {
		return protocol.LaneImplementation
	}
	if strategic > implementation {
		return protocol.LaneStrategic
	}
	return DefaultLane
}
