// Package layout arranges panes in a binary split tree and hands their
// pixel/cell bounds to the renderer. It owns no rendering code: callers
// read Bounds and draw.
package layout

import "math"

// SplitDirection is the axis a split divides space along.
type SplitDirection int

const (
	Horizontal SplitDirection = iota
	Vertical
)

// Node is either a leaf holding a pane or an internal split of two
// children. The zero value of Node is not meaningful; nodes are built
// by SetRoot and Split.
type Node struct {
	PaneID    string
	Direction SplitDirection
	Ratio     float64
	First     *Node
	Second    *Node
}

func newPaneNode(paneID string) *Node {
	return &Node{PaneID: paneID}
}

// IsLeaf reports whether this node holds a pane directly.
func (n *Node) IsLeaf() bool {
	return n.First == nil && n.Second == nil
}

// Bounds is the rectangle occupied by a pane, in the same units passed
// to CalculateBounds (cells, typically).
type Bounds struct {
	X, Y, Width, Height float64
}

func (b Bounds) centerX() float64 { return b.X + b.Width/2 }
func (b Bounds) centerY() float64 { return b.Y + b.Height/2 }

// Layout is a binary tree over pane IDs. Each internal node is a split
// (Horizontal or Vertical, ratio in [0,1]) dividing its rectangle
// between two children.
type Layout struct {
	root *Node
}

// New returns an empty layout with no panes.
func New() *Layout {
	return &Layout{}
}

// SetRoot makes paneID the layout's sole pane, discarding any prior tree.
func (l *Layout) SetRoot(paneID string) {
	l.root = newPaneNode(paneID)
}

// Root exposes the raw tree to the renderer.
func (l *Layout) Root() *Node {
	return l.root
}

// Split replaces the leaf holding target with a split containing the
// old leaf and a new leaf for newPane, at ratio 0.5. A no-op if target
// is not present.
func (l *Layout) Split(target, newPane string, direction SplitDirection) {
	if l.root == nil {
		return
	}
	splitNode(l.root, target, newPane, direction)
}

func splitNode(n *Node, target, newPane string, direction SplitDirection) bool {
	if n.IsLeaf() {
		if n.PaneID != target {
			return false
		}
		old := &Node{PaneID: n.PaneID}
		n.PaneID = ""
		n.Direction = direction
		n.Ratio = 0.5
		n.First = old
		n.Second = newPaneNode(newPane)
		return true
	}
	return splitNode(n.First, target, newPane, direction) || splitNode(n.Second, target, newPane, direction)
}

// Remove deletes paneID from the layout, contracting its parent split
// down to the surviving sibling. Removing the last pane empties the
// layout.
func (l *Layout) Remove(paneID string) {
	if l.root == nil {
		return
	}
	if removeNode(&l.root, paneID) {
		l.root = nil
	}
}

// removeNode reports whether *n itself was the target leaf (so the
// caller must remove n entirely rather than replace it).
func removeNode(n **Node, target string) bool {
	node := *n
	if node.IsLeaf() {
		return node.PaneID == target
	}
	if removeNode(&node.First, target) {
		*n = node.Second
		return false
	}
	if removeNode(&node.Second, target) {
		*n = node.First
		return false
	}
	return false
}

// CalculateBounds recursively partitions a width x height rectangle
// and returns each pane's bounds within it.
func (l *Layout) CalculateBounds(width, height float64) map[string]Bounds {
	bounds := make(map[string]Bounds)
	if l.root != nil {
		calculateNodeBounds(l.root, 0, 0, width, height, bounds)
	}
	return bounds
}

func calculateNodeBounds(n *Node, x, y, width, height float64, bounds map[string]Bounds) {
	if n.IsLeaf() {
		bounds[n.PaneID] = Bounds{X: x, Y: y, Width: width, Height: height}
		return
	}
	switch n.Direction {
	case Horizontal:
		splitX := x + width*n.Ratio
		calculateNodeBounds(n.First, x, y, width*n.Ratio, height, bounds)
		calculateNodeBounds(n.Second, splitX, y, width*(1-n.Ratio), height, bounds)
	case Vertical:
		splitY := y + height*n.Ratio
		calculateNodeBounds(n.First, x, y, width, height*n.Ratio, bounds)
		calculateNodeBounds(n.Second, x, splitY, width, height*(1-n.Ratio), bounds)
	}
}

// Direction is a navigation request relative to the currently focused
// pane.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Navigate picks the nearest pane to currentPane lying in the
// requested half-plane (by center point), comparing squared distance
// between centers and breaking an exact tie by the lower pane id so the
// choice is deterministic regardless of map iteration order. Returns
// "", false if currentPane is unknown or no pane qualifies.
func (l *Layout) Navigate(currentPane string, dir Direction, width, height float64) (string, bool) {
	bounds := l.CalculateBounds(width, height)
	current, ok := bounds[currentPane]
	if !ok {
		return "", false
	}
	cx, cy := current.centerX(), current.centerY()

	best := ""
	bestDist := math.Inf(1)
	for paneID, b := range bounds {
		if paneID == currentPane {
			continue
		}
		px, py := b.centerX(), b.centerY()
		switch dir {
		case Up:
			if py >= cy {
				continue
			}
		case Down:
			if py <= cy {
				continue
			}
		case Left:
			if px >= cx {
				continue
			}
		case Right:
			if px <= cx {
				continue
			}
		}
		dx, dy := px-cx, py-cy
		dist := dx*dx + dy*dy
		if dist < bestDist || (dist == bestDist && paneID < best) {
			bestDist = dist
			best = paneID
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
