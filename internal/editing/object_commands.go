package editing

import (
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/document"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

// MoveObjectCommand repositions a static object.
type MoveObjectCommand struct {
	ctx   *Context
	doc   *document.ObjectsDocument
	index int
	from  geom.Vec3
	to    geom.Vec3
}

// NewMoveObject captures the object's current position as the undo state.
func NewMoveObject(ctx *Context, doc *document.ObjectsDocument, index int, to geom.Vec3) *MoveObjectCommand {
	cmd := &MoveObjectCommand{ctx: ctx, doc: doc, index: index, to: to}
	if index >= 0 && index < len(doc.Objects) {
		cmd.from = doc.Objects[index].Origin
	}
	return cmd
}

// Name implements Command.
func (c *MoveObjectCommand) Name() string { return "move object" }

// Execute implements Command.
func (c *MoveObjectCommand) Execute() bool { return c.setOrigin(c.to) }

// Undo implements Command.
func (c *MoveObjectCommand) Undo() bool { return c.setOrigin(c.from) }

func (c *MoveObjectCommand) setOrigin(pos geom.Vec3) bool {
	if c.index < 0 || c.index >= len(c.doc.Objects) {
		return false
	}
	if c.doc.Objects[c.index].Origin == pos {
		return false
	}
	c.doc.Objects[c.index].Origin = pos
	c.doc.MarkDirty()
	c.ctx.MarkDirty(c.doc.Key)
	return true
}

// RotateObjectCommand reorients a static object.
type RotateObjectCommand struct {
	ctx   *Context
	doc   *document.ObjectsDocument
	index int
	from  geom.Quat
	to    geom.Quat
}

// NewRotateObject captures the object's current orientation as undo state.
func NewRotateObject(ctx *Context, doc *document.ObjectsDocument, index int, to geom.Quat) *RotateObjectCommand {
	cmd := &RotateObjectCommand{ctx: ctx, doc: doc, index: index, to: to}
	if index >= 0 && index < len(doc.Objects) {
		cmd.from = doc.Objects[index].Orientation
	}
	return cmd
}

// Name implements Command.
func (c *RotateObjectCommand) Name() string { return "rotate object" }

// Execute implements Command.
func (c *RotateObjectCommand) Execute() bool { return c.setOrientation(c.to) }

// Undo implements Command.
func (c *RotateObjectCommand) Undo() bool { return c.setOrientation(c.from) }

func (c *RotateObjectCommand) setOrientation(q geom.Quat) bool {
	if c.index < 0 || c.index >= len(c.doc.Objects) {
		return false
	}
	if c.doc.Objects[c.index].Orientation == q {
		return false
	}
	c.doc.Objects[c.index].Orientation = q
	c.doc.MarkDirty()
	c.ctx.MarkDirty(c.doc.Key)
	return true
}

// AddObjectCommand places a new static object.
type AddObjectCommand struct {
	ctx   *Context
	doc   *document.ObjectsDocument
	obj   document.StaticObject
	index int
	added bool
}

// NewAddObject builds an add command for a fully specified object.
func NewAddObject(ctx *Context, doc *document.ObjectsDocument, obj document.StaticObject) *AddObjectCommand {
	return &AddObjectCommand{ctx: ctx, doc: doc, obj: obj, index: -1}
}

// Name implements Command.
func (c *AddObjectCommand) Name() string { return "add object" }

// Execute implements Command.
func (c *AddObjectCommand) Execute() bool {
	if c.added {
		return false
	}
	c.index = c.doc.Add(c.obj)
	c.added = true
	c.ctx.MarkDirty(c.doc.Key)
	return true
}

// Undo implements Command.
func (c *AddObjectCommand) Undo() bool {
	if !c.added {
		return false
	}
	if _, ok := c.doc.RemoveAt(c.index); !ok {
		return false
	}
	c.added = false
	c.ctx.MarkDirty(c.doc.Key)
	return true
}

// RemoveObjectCommand deletes a static object, keeping it for undo.
type RemoveObjectCommand struct {
	ctx     *Context
	doc     *document.ObjectsDocument
	index   int
	removed document.StaticObject
	done    bool
}

// NewRemoveObject builds a remove command for the object at index.
func NewRemoveObject(ctx *Context, doc *document.ObjectsDocument, index int) *RemoveObjectCommand {
	return &RemoveObjectCommand{ctx: ctx, doc: doc, index: index}
}

// Name implements Command.
func (c *RemoveObjectCommand) Name() string { return "remove object" }

// Execute implements Command.
func (c *RemoveObjectCommand) Execute() bool {
	if c.done {
		return false
	}
	obj, ok := c.doc.RemoveAt(c.index)
	if !ok {
		return false
	}
	c.removed = obj
	c.done = true
	c.ctx.MarkDirty(c.doc.Key)
	return true
}

// Undo implements Command.
func (c *RemoveObjectCommand) Undo() bool {
	if !c.done {
		return false
	}
	if !c.doc.InsertAt(c.index, c.removed) {
		return false
	}
	c.done = false
	c.ctx.MarkDirty(c.doc.Key)
	return true
}
