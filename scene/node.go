// Package scene is a minimal retained scene graph drawn with ebiten.
package scene

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Drawable renders node content at the node's world offset.
type Drawable interface {
	Draw(dst *ebiten.Image, ox, oy float64)
}

// Updater is implemented by drawables that animate.
type Updater interface {
	Update(dt float32)
}

// Node is an element of the scene tree.
type Node struct {
	Name     string
	X, Y     float64
	Visible  bool
	Drawable Drawable

	parent    *Node
	children  []*Node
	destroyed bool
}

// NewContainer creates an empty node that only groups children.
func NewContainer(name string) *Node {
	return &Node{Name: name, Visible: true}
}

// NewNode creates a node that draws d.
func NewNode(name string, d Drawable) *Node {
	return &Node{Name: name, Visible: true, Drawable: d}
}

// AddChild appends child, detaching it from any previous parent.
// Panics if child is nil, destroyed, or an ancestor of n.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if child.destroyed {
		panic("scene: cannot add destroyed node")
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			panic("scene: adding child would create a cycle")
		}
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches child and reports whether it was a child of n.
func (n *Node) RemoveChild(child *Node) bool {
	if child == nil || child.parent != n {
		return false
	}
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			break
		}
	}
	child.parent = nil
	return true
}

// RemoveFromParent detaches n. No-op without a parent.
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child list. Do not modify it.
func (n *Node) Children() []*Node { return n.children }

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int { return len(n.children) }

// Destroy detaches n and releases it and its subtree. Destroying twice is a
// no-op.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	n.RemoveFromParent()
	n.destroy()
}

func (n *Node) destroy() {
	n.destroyed = true
	for _, c := range n.children {
		c.parent = nil
		c.destroy()
	}
	n.children = nil
	n.Drawable = nil
}

// IsDestroyed reports whether Destroy has been called.
func (n *Node) IsDestroyed() bool { return n.destroyed }

// Update advances animated drawables in the subtree.
func (n *Node) Update(dt float32) {
	if n.destroyed {
		return
	}
	if u, ok := n.Drawable.(Updater); ok {
		u.Update(dt)
	}
	for _, c := range n.children {
		c.Update(dt)
	}
}

// Draw renders the subtree with n positioned at (ox, oy) + (n.X, n.Y).
func (n *Node) Draw(dst *ebiten.Image, ox, oy float64) {
	if n.destroyed || !n.Visible {
		return
	}
	x, y := ox+n.X, oy+n.Y
	if n.Drawable != nil {
		n.Drawable.Draw(dst, x, y)
	}
	for _, c := range n.children {
		c.Draw(dst, x, y)
	}
}
