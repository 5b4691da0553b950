package observability

import (
	"context"
	"fmt"
	"strings"
)

// NoOpObserver discards every event.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

// MultiObserver delivers each event to several observers in order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver fans out to the non-nil observers given.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	m := &MultiObserver{}
	for _, obs := range observers {
		if obs != nil {
			m.observers = append(m.observers, obs)
		}
	}
	return m
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}

// Len reports how many observers receive events.
func (m *MultiObserver) Len() int {
	return len(m.observers)
}

// LevelFilter drops events below Min before they reach Next.
type LevelFilter struct {
	Min  Level
	Next Observer
}

func (f LevelFilter) OnEvent(ctx context.Context, event Event) {
	if event.Level < f.Min || f.Next == nil {
		return
	}
	f.Next.OnEvent(ctx, event)
}

// Resolve turns an observer spec into an Observer. A spec is one registered
// name or a comma-separated list of names, e.g. "zap,slog"; a list fans out
// through a MultiObserver. An empty spec resolves to NoOpObserver.
func Resolve(spec string) (Observer, error) {
	var names []string
	for _, name := range strings.Split(spec, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	switch len(names) {
	case 0:
		return NoOpObserver{}, nil
	case 1:
		return GetObserver(names[0])
	}

	resolved := make([]Observer, 0, len(names))
	for _, name := range names {
		obs, err := GetObserver(name)
		if err != nil {
			return nil, fmt.Errorf("observer spec %q: %w", spec, err)
		}
		resolved = append(resolved, obs)
	}
	return NewMultiObserver(resolved...), nil
}
