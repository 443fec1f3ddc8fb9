package bind

import (
	"fmt"

	"github.com/dshills/lexbridge/internal/engine"
	"github.com/dshills/lexbridge/internal/engine/cursor"
	"github.com/dshills/lexbridge/internal/engine/list"
)

// SetupList routes the list commands to the list edits for the lifetime of
// c. Mount fails unless the list nodes are registered with ed.
//
// All handlers run at PriorityLow. Indent and outdent never report handled,
// so generic block indentation still runs; paragraph insertion reports
// handled only when it left an empty list item. The list type commands
// report handled unless their update failed.
func SetupList(c *Component, ed *engine.Engine) {
	c.OnMount(func() (func(), error) {
		if !ed.HasNodes(list.NodeList, list.NodeListItem) {
			return nil, &PreconditionError{
				Binder: "SetupList",
				Err:    fmt.Errorf("%s: %w", list.NodeList, engine.ErrNodeNotRegistered),
			}
		}
		renumber, err := list.Register(ed)
		if err != nil {
			return nil, &PreconditionError{Binder: "SetupList", Err: err}
		}

		return engine.MergeRegister(
			renumber,
			ed.RegisterCommand(engine.IndentContent, func(any) bool {
				_ = list.IndentList(ed)
				return false
			}, engine.PriorityLow),
			ed.RegisterCommand(engine.OutdentContent, func(any) bool {
				_ = list.OutdentList(ed)
				return false
			}, engine.PriorityLow),
			ed.RegisterCommand(list.InsertOrderedListCommand, func(any) bool {
				return list.InsertList(ed, engine.ListNumber) == nil
			}, engine.PriorityLow),
			ed.RegisterCommand(list.InsertUnorderedListCommand, func(any) bool {
				return list.InsertList(ed, engine.ListBullet) == nil
			}, engine.PriorityLow),
			ed.RegisterCommand(list.RemoveListCommand, func(any) bool {
				return list.RemoveList(ed) == nil
			}, engine.PriorityLow),
			ed.RegisterCommand(engine.InsertParagraph, func(any) bool {
				return cursor.Edit(ed, list.HandleListInsertParagraph)
			}, engine.PriorityLow),
		), nil
	})
}
