// Package form classifies apply wizard fields and fills them with resolved answers.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoMatchingOption is returned when no radio or dropdown option contains the answer.
var ErrNoMatchingOption = errors.New("no option matches answer")

// Kind is the input strategy a field requires.
type Kind int

const (
	// KindText is a free-text input (the default shape)
	KindText Kind = iota
	// KindRadio is a group of radio inputs with labels
	KindRadio
	// KindDropdown is a select element with options
	KindDropdown
)

func (k Kind) String() string {
	switch k {
	case KindRadio:
		return "radio"
	case KindDropdown:
		return "dropdown"
	default:
		return "text"
	}
}

// Capabilities is the set of input markers found inside a field grouping.
type Capabilities struct {
	HasRadio  bool
	HasSelect bool
}

// Classify maps a capability set to the field kind. Radio wins over select.
func Classify(c Capabilities) Kind {
	switch {
	case c.HasRadio:
		return KindRadio
	case c.HasSelect:
		return KindDropdown
	default:
		return KindText
	}
}

// Field is one form grouping on the current wizard step.
type Field interface {
	// Label returns the visible question text
	Label(ctx context.Context) (string, error)
	// Capabilities reports which input markers are present
	Capabilities(ctx context.Context) (Capabilities, error)
	// Options returns the visible option labels of a radio group or dropdown, in order
	Options(ctx context.Context, kind Kind) ([]string, error)
	// Choose selects the option at index for the given kind
	Choose(ctx context.Context, kind Kind, index int) error
	// SetText clears the text input and types value
	SetText(ctx context.Context, value string) error
}

// Result describes what Fill did to a field.
type Result struct {
	Kind   Kind
	Option string // Chosen option label; empty for text fields
}

// Fill applies answer to the field using the strategy its shape requires.
func Fill(ctx context.Context, field Field, answer string) (Result, error) {
	caps, err := field.Capabilities(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to inspect field: %w", err)
	}
	kind := Classify(caps)

	if kind == KindText {
		if err := field.SetText(ctx, answer); err != nil {
			return Result{Kind: kind}, fmt.Errorf("failed to fill text input: %w", err)
		}
		return Result{Kind: kind}, nil
	}

	options, err := field.Options(ctx, kind)
	if err != nil {
		return Result{Kind: kind}, fmt.Errorf("failed to read %s options: %w", kind, err)
	}
	idx := MatchOption(options, answer)
	if idx < 0 {
		return Result{Kind: kind}, fmt.Errorf("%s field: %w %q", kind, ErrNoMatchingOption, answer)
	}
	if err := field.Choose(ctx, kind, idx); err != nil {
		return Result{Kind: kind}, fmt.Errorf("failed to select %s option %q: %w", kind, options[idx], err)
	}
	return Result{Kind: kind, Option: options[idx]}, nil
}

// MatchOption returns the index of the first option whose label contains answer,
// compared case-insensitively, or -1.
func MatchOption(options []string, answer string) int {
	needle := strings.ToLower(answer)
	for i, opt := range options {
		if strings.Contains(strings.ToLower(opt), needle) {
			return i
		}
	}
	return -1
}
