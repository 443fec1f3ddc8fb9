// Package engine implements the command-driven rich-text editing engine that
// the binding layer drives.
//
// The engine owns an immutable document snapshot (State), applies mutations
// inside transactions (Update), and notifies update listeners synchronously
// after each commit. Structural behavior is attached through a
// priority-ordered command table.
//
// # Documents
//
// A document is a tree of Nodes keyed by NodeKey. Element nodes (root,
// paragraph, list, listitem) hold children; text-like nodes hold a string.
// Every node variant must be registered with the engine's Registry before a
// transaction can create it:
//
//	ed := engine.New(engine.WithNodes(list.Nodes()...))
//
// # Transactions
//
// All writes happen inside Update:
//
//	err := ed.Update(func(tx *engine.Tx) error {
//	    p := tx.CreateElement(engine.NodeParagraph)
//	    t := tx.CreateText(engine.NodeText, "hello")
//	    tx.Append(p.Key, t.Key)
//	    tx.Append(engine.RootKey, p.Key)
//	    return nil
//	})
//
// A transaction records which elements and leaves it mutated (the dirty
// set). Selection changes alone leave the dirty set empty. An Update started
// from inside another update function joins the active transaction; an
// Update started from a command handler or an update listener runs to
// completion, including its own listener notifications, before it returns.
//
// # Commands
//
// Handlers are registered per command with a numeric priority. Dispatch
// walks the handlers from highest to lowest priority, ties in registration
// order, and stops at the first handler that reports the command handled.
//
// # Concurrency
//
// The engine is meant to be driven from a single goroutine. Internal tables
// are mutex guarded so that registrations and reads from other goroutines do
// not race, but no lock is held while handlers or listeners run.
package engine
