package forms

import (
	"errors"
	"fmt"
)

// Edit operations accepted by Apply.
const (
	OpSet        = "set"
	OpAddLine    = "add_line"
	OpSetLine    = "set_line"
	OpRemoveLine = "remove_line"
)

var ErrUnknownEdit = errors.New("unknown form edit")

// Edit is one change to a form: a scalar field update or an ingredient line
// add, replace or removal.
type Edit struct {
	Op    string    `json:"op"`
	Field string    `json:"field,omitempty"`
	Value string    `json:"value,omitempty"`
	Index int       `json:"index,omitempty"`
	Line  LineDraft `json:"line"`
}

type lineEditor interface {
	AddLine(line LineDraft) int
	SetLine(i int, line LineDraft) error
	RemoveLine(i int) error
}

// Apply runs edits against f in order and stops at the first failure.
func Apply(f Form, edits ...Edit) error {
	for _, e := range edits {
		if err := apply(f, e); err != nil {
			return err
		}
	}
	return nil
}

func apply(f Form, e Edit) error {
	if e.Op == OpSet {
		if err := f.Set(e.Field, e.Value); err != nil {
			return fmt.Errorf("%w: %q", err, e.Field)
		}
		return nil
	}

	le, ok := f.(lineEditor)
	if !ok {
		return fmt.Errorf("%w: %s on a form without ingredients", ErrUnknownEdit, e.Op)
	}
	switch e.Op {
	case OpAddLine:
		le.AddLine(e.Line)
		return nil
	case OpSetLine:
		return le.SetLine(e.Index, e.Line)
	case OpRemoveLine:
		return le.RemoveLine(e.Index)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEdit, e.Op)
	}
}
