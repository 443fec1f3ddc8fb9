package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrNodeNotRegistered indicates a node variant is missing from the registry.
	ErrNodeNotRegistered = errors.New("node type not registered")

	// ErrNodeNotFound indicates a key does not resolve to a node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNotElement indicates an element operation was applied to a leaf.
	ErrNotElement = errors.New("node is not an element")

	// ErrNotText indicates a text operation was applied to a non-text node.
	ErrNotText = errors.New("node is not a text node")

	// ErrUpdateInProgress indicates a state swap was attempted inside an update.
	ErrUpdateInProgress = errors.New("update in progress")

	// ErrTransformLoop indicates node transforms kept dirtying nodes.
	ErrTransformLoop = errors.New("node transforms did not settle")

	// ErrInvalidOffset indicates a text offset outside the node's text.
	ErrInvalidOffset = errors.New("offset out of range")

	// ErrInvalidInitialState indicates an initial document of an unsupported type.
	ErrInvalidInitialState = errors.New("unsupported initial editor state")
)
