package editing

import "go.uber.org/zap"

// Command is an undoable editing operation. Execute and Undo return false
// when there was nothing to do (no changes collected, value already
// matched); they never throw for runtime data conditions.
//
// Commands may be re-executed after an undo any number of times, and both
// directions are idempotent against the underlying store: re-applying the
// same direction twice is a no-op the second time.
type Command interface {
	Name() string
	Execute() bool
	Undo() bool
}

// CompoundCommand groups several commands into one undo step. Execution
// runs the parts in order; undo runs them in reverse.
type CompoundCommand struct {
	name     string
	commands []Command
}

// NewCompound builds a compound command.
func NewCompound(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{name: name, commands: commands}
}

// Name implements Command.
func (c *CompoundCommand) Name() string { return c.name }

// Execute runs every part. Reports success when any part did work.
func (c *CompoundCommand) Execute() bool {
	any := false
	for _, cmd := range c.commands {
		if cmd.Execute() {
			any = true
		}
	}
	return any
}

// Undo reverts every part in reverse order.
func (c *CompoundCommand) Undo() bool {
	any := false
	for i := len(c.commands) - 1; i >= 0; i-- {
		if c.commands[i].Undo() {
			any = true
		}
	}
	return any
}

// History is the bounded undo stack. When the configured limit is
// exceeded the oldest entry is evicted. A limit of zero means unbounded.
type History struct {
	limit  int
	log    *zap.Logger
	undone []Command
	done   []Command
}

// NewHistory builds a history with the given depth limit.
func NewHistory(limit int) *History {
	return &History{limit: limit, log: zap.NewNop()}
}

// SetLogger routes command execution diagnostics to a logger.
func (h *History) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	h.log = log
}

// Do executes a command and, if it did work, records it. A command that
// reports false is discarded: there is nothing to undo.
func (h *History) Do(cmd Command) bool {
	if !cmd.Execute() {
		h.log.Debug("command did no work", zap.String("command", cmd.Name()))
		return false
	}
	h.log.Debug("executed command", zap.String("command", cmd.Name()))
	h.done = append(h.done, cmd)
	h.undone = h.undone[:0]
	if h.limit > 0 && len(h.done) > h.limit {
		h.done = h.done[len(h.done)-h.limit:]
	}
	return true
}

// Undo reverts the most recent command.
func (h *History) Undo() bool {
	if len(h.done) == 0 {
		return false
	}
	cmd := h.done[len(h.done)-1]
	h.done = h.done[:len(h.done)-1]
	cmd.Undo()
	h.log.Debug("undid command", zap.String("command", cmd.Name()))
	h.undone = append(h.undone, cmd)
	return true
}

// Redo re-executes the most recently undone command.
func (h *History) Redo() bool {
	if len(h.undone) == 0 {
		return false
	}
	cmd := h.undone[len(h.undone)-1]
	h.undone = h.undone[:len(h.undone)-1]
	cmd.Execute()
	h.log.Debug("redid command", zap.String("command", cmd.Name()))
	h.done = append(h.done, cmd)
	return true
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return len(h.done) > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return len(h.undone) > 0 }

// Len returns the current undo depth.
func (h *History) Len() int { return len(h.done) }
