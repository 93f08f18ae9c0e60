// Package trigger implements the story matching rules and the
// configuration language that assembles them.
//
// A Trigger is a pure predicate over a model.Story. Leaf triggers test the
// title, the description or the publication time; composite triggers combine
// other triggers with NOT, AND and OR. Triggers never mutate and may be
// evaluated from multiple goroutines.
package trigger

import (
	"fmt"
	"strconv"
	"time"

	"news_alert/internal/model"
)

// TimeLayout is the format of time arguments in BEFORE and AFTER rules,
// e.g. "02 Jan 2024 09:30:00".
const TimeLayout = "2 Jan 2006 15:04:05"

// ReferenceZone is the default zone time arguments are read in.
// Story publication times are normalized into the same zone by the fetcher.
var ReferenceZone = time.FixedZone("EST", -5*60*60)

// Trigger decides whether a story should be surfaced.
type Trigger interface {
	Evaluate(s model.Story) bool
	String() string
}

// Title fires when the story title contains a phrase.
type Title struct {
	phrase string
}

// NewTitle creates a Title trigger.
func NewTitle(phrase string) Title {
	return Title{phrase: phrase}
}

// Evaluate implements Trigger.
func (t Title) Evaluate(s model.Story) bool {
	return IsPhraseIn(t.phrase, s.Title)
}

func (t Title) String() string {
	return "TITLE " + strconv.Quote(t.phrase)
}

// Description fires when the story description contains a phrase.
type Description struct {
	phrase string
}

// NewDescription creates a Description trigger.
func NewDescription(phrase string) Description {
	return Description{phrase: phrase}
}

// Evaluate implements Trigger.
func (t Description) Evaluate(s model.Story) bool {
	return IsPhraseIn(t.phrase, s.Description)
}

func (t Description) String() string {
	return "DESCRIPTION " + strconv.Quote(t.phrase)
}

// Before fires for stories published strictly before a point in time.
type Before struct {
	at time.Time
}

// NewBefore parses value with TimeLayout in loc and creates a Before trigger.
func NewBefore(value string, loc *time.Location) (Before, error) {
	at, err := ParseTime(value, loc)
	if err != nil {
		return Before{}, err
	}
	return Before{at: at}, nil
}

// Evaluate implements Trigger.
func (t Before) Evaluate(s model.Story) bool {
	return s.PubDate.Before(t.at)
}

func (t Before) String() string {
	return "BEFORE " + t.at.Format(TimeLayout)
}

// After fires for stories published strictly after a point in time.
type After struct {
	at time.Time
}

// NewAfter parses value with TimeLayout in loc and creates an After trigger.
func NewAfter(value string, loc *time.Location) (After, error) {
	at, err := ParseTime(value, loc)
	if err != nil {
		return After{}, err
	}
	return After{at: at}, nil
}

// Evaluate implements Trigger.
func (t After) Evaluate(s model.Story) bool {
	return s.PubDate.After(t.at)
}

func (t After) String() string {
	return "AFTER " + t.at.Format(TimeLayout)
}

// Not inverts another trigger.
type Not struct {
	inner Trigger
}

// NewNot creates a Not trigger.
func NewNot(inner Trigger) Not {
	return Not{inner: inner}
}

// Evaluate implements Trigger.
func (t Not) Evaluate(s model.Story) bool {
	return !t.inner.Evaluate(s)
}

func (t Not) String() string {
	return fmt.Sprintf("NOT(%s)", t.inner)
}

// And fires when both of its triggers fire.
type And struct {
	left, right Trigger
}

// NewAnd creates an And trigger.
func NewAnd(left, right Trigger) And {
	return And{left: left, right: right}
}

// Evaluate implements Trigger.
func (t And) Evaluate(s model.Story) bool {
	return t.left.Evaluate(s) && t.right.Evaluate(s)
}

func (t And) String() string {
	return fmt.Sprintf("AND(%s, %s)", t.left, t.right)
}

// Or fires when at least one of its triggers fires.
type Or struct {
	left, right Trigger
}

// NewOr creates an Or trigger.
func NewOr(left, right Trigger) Or {
	return Or{left: left, right: right}
}

// Evaluate implements Trigger.
func (t Or) Evaluate(s model.Story) bool {
	return t.left.Evaluate(s) || t.right.Evaluate(s)
}

func (t Or) String() string {
	return fmt.Sprintf("OR(%s, %s)", t.left, t.right)
}

// ParseTime parses a rule time argument in loc. A nil loc means ReferenceZone.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = ReferenceZone
	}
	t, err := time.ParseInLocation(TimeLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match %q", ErrInvalidTimeFormat, value, TimeLayout)
	}
	return t, nil
}
