package sunburst

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrMalformedTree is returned by Build when the hierarchy cannot be indexed.
var ErrMalformedTree = errors.New("sunburst: malformed tree")

// DataNode is a read-only view of one node of an external hierarchy.
// Children order is sibling order. Weight is only consulted for leaves; a
// zero weight counts as 1. Implementations must be comparable so cycles can
// be detected.
type DataNode interface {
	Children() []DataNode
	Weight() float64
}

// TreePath is the chain of data nodes from the root to a node, inclusive.
type TreePath []DataNode

// Last returns the node the path points at, or nil for an empty path.
func (p TreePath) Last() DataNode {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// NodeID indexes a node in a Tree. IDs are assigned in pre-order, so the
// root is always 0 and a subtree occupies a contiguous ID range.
type NodeID int32

// NoNode is returned by lookups that hit nothing.
const NoNode NodeID = -1

// IndexedNode is the layout record derived for every node.
type IndexedNode struct {
	Depth    int
	Left     float64
	Extent   float64
	MaxDepth int
}

type record struct {
	IndexedNode
	parent   NodeID
	firstKid int32 // offset into Tree.kids
	numKids  int32
	end      NodeID // one past the last ID of the subtree
}

// Tree is an immutable indexed snapshot of a hierarchy, stored as an arena.
// A Tree is safe for concurrent readers.
type Tree struct {
	nodes []record
	kids  []NodeID
	data  []DataNode
}

// Build indexes the hierarchy rooted at root. It walks the tree iteratively,
// so depth is bounded only by memory. It fails on nil roots, cycles and
// negative or non-finite weights.
func Build(root DataNode) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrMalformedTree)
	}

	t := &Tree{}

	// Pre-order pass: assign IDs, depth, parent and child slots.
	type frame struct {
		node   DataNode
		parent NodeID
		slot   int
		exit   bool
	}
	onPath := make(map[DataNode]bool)
	stack := []frame{{node: root, parent: NoNode, slot: -1}}
	var path []DataNode

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.exit {
			delete(onPath, f.node)
			path = path[:len(path)-1]
			continue
		}
		if f.node == nil {
			return nil, fmt.Errorf("%w: nil child at depth %d", ErrMalformedTree, len(path))
		}
		if onPath[f.node] {
			return nil, fmt.Errorf("%w: cycle at depth %d", ErrMalformedTree, len(path))
		}

		w := f.node.Weight()
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %v at depth %d", ErrMalformedTree, w, len(path))
		}

		id := NodeID(len(t.nodes))
		depth := 0
		if f.parent != NoNode {
			depth = t.nodes[f.parent].Depth + 1
			t.kids[f.slot] = id
		}
		children := f.node.Children()
		rec := record{
			IndexedNode: IndexedNode{Depth: depth},
			parent:      f.parent,
			firstKid:    int32(len(t.kids)),
			numKids:     int32(len(children)),
		}
		if len(children) == 0 {
			if w == 0 {
				w = 1
			}
			rec.Extent = w
		}
		t.nodes = append(t.nodes, rec)
		t.data = append(t.data, f.node)
		for range children {
			t.kids = append(t.kids, NoNode)
		}

		onPath[f.node] = true
		path = append(path, f.node)
		stack = append(stack, frame{node: f.node, exit: true})
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:   children[i],
				parent: id,
				slot:   int(rec.firstKid) + i,
			})
		}
	}

	// Reverse pre-order visits children before parents: aggregate extent,
	// maxDepth and subtree end.
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := &t.nodes[i]
		n.end = NodeID(i + 1)
		for _, k := range t.kids[n.firstKid : n.firstKid+n.numKids] {
			c := &t.nodes[k]
			n.Extent += c.Extent
			if c.MaxDepth+1 > n.MaxDepth {
				n.MaxDepth = c.MaxDepth + 1
			}
			if c.end > n.end {
				n.end = c.end
			}
		}
	}

	// Forward pre-order: children tile the parent's span in sibling order.
	for i := range t.nodes {
		n := &t.nodes[i]
		left := n.Left
		for _, k := range t.kids[n.firstKid : n.firstKid+n.numKids] {
			t.nodes[k].Left = left
			left += t.nodes[k].Extent
		}
	}

	return t, nil
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the root ID.
func (t *Tree) Root() NodeID { return 0 }

// Valid reports whether id names a node of t.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Node returns the layout record of id.
func (t *Tree) Node(id NodeID) IndexedNode { return t.nodes[id].IndexedNode }

// Depth returns the generation of id; the root has depth 0.
func (t *Tree) Depth(id NodeID) int { return t.nodes[id].Depth }

// Left returns the starting offset of id within the root's span.
func (t *Tree) Left(id NodeID) float64 { return t.nodes[id].Left }

// Extent returns the summed leaf weight of id's subtree.
func (t *Tree) Extent(id NodeID) float64 { return t.nodes[id].Extent }

// MaxDepth returns the height of id's subtree; leaves have 0.
func (t *Tree) MaxDepth(id NodeID) int { return t.nodes[id].MaxDepth }

// Generations returns the number of levels in id's subtree, MaxDepth+1.
// Projectors use it as the total depth of a focus root.
func (t *Tree) Generations(id NodeID) int { return t.nodes[id].MaxDepth + 1 }

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// Children returns the child IDs of id in sibling order. The slice is shared
// and must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	n := &t.nodes[id]
	return t.kids[n.firstKid : n.firstKid+n.numKids : n.firstKid+n.numKids]
}

// IsLeaf reports whether id has no children.
func (t *Tree) IsLeaf(id NodeID) bool { return t.nodes[id].numKids == 0 }

// Data returns the source node of id.
func (t *Tree) Data(id NodeID) DataNode { return t.data[id] }

// IsDescendant reports whether id lies in the subtree of ancestor,
// ancestor itself included.
func (t *Tree) IsDescendant(ancestor, id NodeID) bool {
	if !t.Valid(ancestor) || !t.Valid(id) {
		return false
	}
	return id >= ancestor && id < t.nodes[ancestor].end
}

// Path returns the data nodes from the root down to id.
func (t *Tree) Path(id NodeID) TreePath {
	if !t.Valid(id) {
		return nil
	}
	p := make(TreePath, t.nodes[id].Depth+1)
	for n := id; n != NoNode; n = t.nodes[n].parent {
		p[t.nodes[n].Depth] = t.data[n]
	}
	return p
}

// Lookup returns the ID of the node reached by following path from the root,
// matching data nodes by equality. It returns NoNode if the path does not
// exist in t.
func (t *Tree) Lookup(path TreePath) NodeID {
	if len(path) == 0 || len(t.nodes) == 0 || t.data[0] != path[0] {
		return NoNode
	}
	id := NodeID(0)
	for _, want := range path[1:] {
		next := NoNode
		for _, k := range t.Children(id) {
			if t.data[k] == want {
				next = k
				break
			}
		}
		if next == NoNode {
			return NoNode
		}
		id = next
	}
	return id
}

// FindNode returns the node at the given absolute depth whose half-open span
// [Left, Left+Extent) contains number, searching from the tree root.
func (t *Tree) FindNode(depth int, number float64) NodeID {
	return t.FindNodeFrom(t.Root(), depth, number)
}

// FindNodeFrom is FindNode restricted to the subtree of from.
func (t *Tree) FindNodeFrom(from NodeID, depth int, number float64) NodeID {
	if !t.Valid(from) {
		return NoNode
	}
	n := &t.nodes[from]
	if depth < n.Depth || number < n.Left || number >= n.Left+n.Extent {
		return NoNode
	}
	id := from
	for t.nodes[id].Depth < depth {
		kids := t.Children(id)
		i := sort.Search(len(kids), func(i int) bool {
			c := &t.nodes[kids[i]]
			return c.Left+c.Extent > number
		})
		if i == len(kids) || t.nodes[kids[i]].Left > number {
			return NoNode
		}
		id = kids[i]
	}
	return id
}

// Walk visits the subtree of from in pre-order without recursion. Returning
// false from fn skips the node's children.
func (t *Tree) Walk(from NodeID, fn func(id NodeID) bool) {
	if !t.Valid(from) {
		return
	}
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(id) {
			continue
		}
		kids := t.Children(id)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// Item is a simple in-memory DataNode.
type Item struct {
	Name  string
	Size  float64
	Items []*Item
}

// Children implements DataNode.
func (it *Item) Children() []DataNode {
	out := make([]DataNode, len(it.Items))
	for i, c := range it.Items {
		out[i] = c
	}
	return out
}

// Weight implements DataNode.
func (it *Item) Weight() float64 { return it.Size }

// String returns the item name.
func (it *Item) String() string { return it.Name }
