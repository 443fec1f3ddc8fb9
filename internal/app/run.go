package app

import (
	"errors"
	"fmt"

	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/dragon"
)

// Run mounts a fresh composer, plays the script against it and reports the
// final document. The composer is destroyed before Run returns.
func (a *Application) Run(script *Script) (rep *Report, err error) {
	var initial any
	if script.Initial != nil {
		initial = *script.Initial
	}
	s, err := a.newSession(initial)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for i, step := range script.Steps {
		op, err := step.Op()
		if err != nil {
			return nil, NewOperationError(op, stepName(i), err)
		}
		handled, err := s.apply(op, step)
		if err != nil {
			return nil, NewOperationError(op, stepName(i), err)
		}
		if !handled {
			s.logger.Warn("step not handled", "step", i+1, "op", op)
		}
		s.composer.Update()
	}
	return s.report(), nil
}

func (s *session) apply(op string, step Step) (bool, error) {
	ed := s.ed
	switch op {
	case "type":
		return ed.DispatchCommand(engine.InsertText, step.Type), nil
	case "command":
		return ed.DispatchCommand(engine.Command(step.Command), commandPayload(step)), nil
	case "delete":
		return ed.DispatchCommand(engine.DeleteCharacter, step.Delete == "backward"), nil
	case "select":
		sel, err := resolveSelect(ed.EditorState(), *step.Select)
		if err != nil {
			return false, err
		}
		return ed.DispatchCommand(engine.SelectionChange, sel), nil
	case "undo":
		return ed.DispatchCommand(engine.Undo, nil), nil
	case "redo":
		return ed.DispatchCommand(engine.Redo, nil), nil
	case "compose":
		ed.SetComposing(*step.Compose)
		return true, nil
	case "advance":
		if step.Advance < 0 {
			return false, errors.New("advance must not be negative")
		}
		s.clock.advance(step.Advance)
		return true, nil
	case "dictate":
		return ed.DispatchCommand(dragon.Input, step.Dictate), nil
	}
	return false, fmt.Errorf("unknown step %q", op)
}

func commandPayload(step Step) any {
	switch engine.Command(step.Command) {
	case engine.InsertText:
		return step.Text
	case engine.FormatText:
		f, _ := parseFormat(step.Format)
		return f
	case engine.DeleteCharacter:
		return true
	}
	return nil
}

// resolveSelect maps a block-relative selection onto the document.
func resolveSelect(st *engine.State, sel Select) (*engine.Selection, error) {
	blocks := engine.Children(st, engine.RootKey)
	if sel.Block < 0 || sel.Block >= len(blocks) {
		return nil, fmt.Errorf("%w: block %d of %d", ErrSelectionOutOfRange, sel.Block, len(blocks))
	}
	if sel.Offset < 0 || sel.Length < 0 {
		return nil, fmt.Errorf("%w: negative offset", ErrSelectionOutOfRange)
	}
	block := blocks[sel.Block].Key
	anchor, err := blockPoint(st, block, sel.Offset)
	if err != nil {
		return nil, err
	}
	focus, err := blockPoint(st, block, sel.Offset+sel.Length)
	if err != nil {
		return nil, err
	}
	return &engine.Selection{Anchor: anchor, Focus: focus}, nil
}

func blockPoint(st *engine.State, block engine.NodeKey, offset int) (engine.Point, error) {
	pos := 0
	for _, n := range engine.Leaves(st, block) {
		switch n.Kind {
		case engine.KindText:
			if offset <= pos+len(n.Text) {
				return engine.TextPoint(n.Key, offset-pos), nil
			}
			pos += len(n.Text)
		case engine.KindLineBreak:
			if offset == pos {
				return engine.ElementPoint(n.Parent, engine.IndexOf(st, n.Key)), nil
			}
			pos++
		default:
			if offset == pos {
				return engine.ElementPoint(n.Key, 0), nil
			}
		}
	}
	if offset == pos {
		return engine.ElementPoint(block, len(st.Node(block).Children)), nil
	}
	return engine.Point{}, fmt.Errorf("%w: offset %d of %d", ErrSelectionOutOfRange, offset, pos)
}
