// Package dragon handles change requests posted by speech dictation tools
// that edit the focused text node through a messaging bridge instead of
// regular input events.
package dragon

import (
	"github.com/tidwall/gjson"

	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/cursor"
)

// Input carries a change request, either as a Message or as the raw JSON
// message string posted by the dictation tool.
const Input engine.Command = "DRAGON_INPUT"

// Message protocol constants.
const (
	Protocol    = "nuanria_messaging"
	RequestType = "request"
	MakeChanges = "makeChanges"
)

// Message asks to replace a span of the anchor text node and then select a
// span of the result. Offsets are byte offsets into the anchor node.
type Message struct {
	ElementStart  int
	ElementLength int
	Text          string
	SelStart      int
	SelLength     int
	// FormatCommand is carried by the protocol but not acted on.
	FormatCommand string
}

// Parse decodes a raw bridge message. It reports false for anything that is
// not a makeChanges request.
func Parse(raw string) (Message, bool) {
	if !gjson.Valid(raw) {
		return Message{}, false
	}
	root := gjson.Parse(raw)
	if root.Get("protocol").String() != Protocol || root.Get("type").String() != RequestType {
		return Message{}, false
	}
	payload := root.Get("payload")
	if payload.Get("functionId").String() != MakeChanges {
		return Message{}, false
	}
	args := payload.Get("args")
	if !args.IsArray() {
		return Message{}, false
	}
	a := args.Array()
	arg := func(i int) gjson.Result {
		if i < len(a) {
			return a[i]
		}
		return gjson.Result{}
	}
	return Message{
		ElementStart:  int(arg(0).Int()),
		ElementLength: int(arg(1).Int()),
		Text:          arg(2).String(),
		SelStart:      int(arg(3).Int()),
		SelLength:     int(arg(4).Int()),
		FormatCommand: arg(5).String(),
	}, true
}

// Register installs the Input handler on ed.
func Register(ed *engine.Engine) func() {
	return ed.RegisterCommand(Input, func(payload any) bool {
		var msg Message
		switch p := payload.(type) {
		case Message:
			msg = p
		case string:
			m, ok := Parse(p)
			if !ok {
				return false
			}
			msg = m
		default:
			return false
		}
		return cursor.Edit(ed, func(tx *engine.Tx) bool {
			return apply(tx, msg)
		})
	}, engine.PriorityEditor)
}

func apply(tx *engine.Tx, msg Message) bool {
	sel := tx.Selection()
	if sel == nil {
		return false
	}
	anchor := sel.Anchor.Key
	if n := tx.Node(anchor); n != nil && n.Kind == engine.KindText && msg.ElementStart >= 0 && msg.ElementLength >= 0 {
		start := min(msg.ElementStart, len(n.Text))
		end := spanEnd(start, msg.ElementLength, len(n.Text))
		tx.SetSelection(&engine.Selection{
			Anchor: engine.TextPoint(anchor, start),
			Focus:  engine.TextPoint(anchor, end),
		})
		sel = tx.Selection()
	}
	if !sel.IsCollapsed() || msg.Text != "" {
		cursor.InsertRawText(tx, msg.Text)
		anchor = tx.Selection().Anchor.Key
	}
	if n := tx.Node(anchor); n != nil && n.Kind == engine.KindText {
		start := min(max(msg.SelStart, 0), len(n.Text))
		end := spanEnd(start, msg.SelLength, len(n.Text))
		tx.SetSelection(&engine.Selection{
			Anchor: engine.TextPoint(anchor, start),
			Focus:  engine.TextPoint(anchor, end),
		})
	}
	return true
}

// spanEnd returns start+length clamped to [start, limit] without
// overflowing on lengths near the int range.
func spanEnd(start, length, limit int) int {
	if length <= 0 {
		return start
	}
	if length > limit-start {
		return limit
	}
	return start + length
}
