// Package rules keeps the active trigger rule set and reloads it from disk.
package rules

import (
	"fmt"
	"sync/atomic"
	"time"

	"news_alert/internal/trigger"
)

// Holder owns the rule set loaded from a rule file. Readers always see a
// complete rule set; a failed reload leaves the previous one in place.
type Holder struct {
	path    string
	parser  *trigger.Parser
	current atomic.Pointer[trigger.RuleSet]
}

// Load reads the rule file at path, interpreting time arguments in loc, and
// returns a Holder serving it.
func Load(path string, loc *time.Location) (*Holder, error) {
	h := &Holder{path: path, parser: trigger.NewParser(loc)}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Static returns a Holder serving a fixed rule set. Reload on it is a no-op.
func Static(rs *trigger.RuleSet) *Holder {
	h := &Holder{}
	h.current.Store(rs)
	return h
}

// Reload re-reads the rule file and swaps it in if it builds cleanly.
func (h *Holder) Reload() error {
	if h.path == "" {
		return nil
	}
	rs, err := h.parser.Load(h.path)
	if err != nil {
		return fmt.Errorf("load rules %s: %w", h.path, err)
	}
	h.current.Store(rs)
	return nil
}

// Current returns the active rule set.
func (h *Holder) Current() *trigger.RuleSet {
	return h.current.Load()
}

// Path returns the rule file the holder reads from.
func (h *Holder) Path() string {
	return h.path
}
