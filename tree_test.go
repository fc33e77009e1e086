package sunburst

import (
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func leaf(name string, size float64) *Item { return &Item{Name: name, Size: size} }

func dir(name string, items ...*Item) *Item { return &Item{Name: name, Items: items} }

// sampleTree is root{a(1), b{c(1), d(1)}}.
func sampleTree() *Item {
	return dir("root", leaf("a", 1), dir("b", leaf("c", 1), leaf("d", 1)))
}

func mustBuild(t testing.TB, root DataNode) *Tree {
	t.Helper()
	tr, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tr
}

// --- Build ---

func TestBuildFourNodeTree(t *testing.T) {
	tr := mustBuild(t, sampleTree())

	if tr.Len() != 5 {
		t.Fatalf("Len = %d, want 5", tr.Len())
	}
	// Pre-order IDs: root=0 a=1 b=2 c=3 d=4.
	tests := []struct {
		id       NodeID
		depth    int
		left     float64
		extent   float64
		maxDepth int
	}{
		{0, 0, 0, 3, 2},
		{1, 1, 0, 1, 0},
		{2, 1, 1, 2, 1},
		{3, 2, 1, 1, 0},
		{4, 2, 2, 1, 0},
	}
	for _, tt := range tests {
		n := tr.Node(tt.id)
		if n.Depth != tt.depth || n.MaxDepth != tt.maxDepth {
			t.Errorf("node %d depth/maxDepth = %d/%d, want %d/%d", tt.id, n.Depth, n.MaxDepth, tt.depth, tt.maxDepth)
		}
		assertNear(t, "left", n.Left, tt.left)
		assertNear(t, "extent", n.Extent, tt.extent)
	}
	if got := tr.Generations(0); got != 3 {
		t.Errorf("Generations(root) = %d, want 3", got)
	}
}

func TestBuildStructure(t *testing.T) {
	tr := mustBuild(t, sampleTree())

	if p := tr.Parent(3); p != 2 {
		t.Errorf("Parent(c) = %d, want 2", p)
	}
	if p := tr.Parent(0); p != NoNode {
		t.Errorf("Parent(root) = %d, want NoNode", p)
	}
	kids := tr.Children(0)
	if len(kids) != 2 || kids[0] != 1 || kids[1] != 2 {
		t.Errorf("Children(root) = %v, want [1 2]", kids)
	}
	if !tr.IsLeaf(1) || tr.IsLeaf(2) {
		t.Error("IsLeaf wrong for a or b")
	}
	if !tr.IsDescendant(2, 4) || tr.IsDescendant(2, 1) || !tr.IsDescendant(2, 2) {
		t.Error("IsDescendant wrong")
	}
	if tr.IsDescendant(2, NoNode) {
		t.Error("IsDescendant(NoNode) = true")
	}
}

func TestBuildZeroWeightLeafCountsAsOne(t *testing.T) {
	tr := mustBuild(t, dir("root", leaf("a", 0), leaf("b", 2.5)))
	assertNear(t, "extent(a)", tr.Extent(1), 1)
	assertNear(t, "extent(root)", tr.Extent(0), 3.5)
	assertNear(t, "left(b)", tr.Left(2), 1)
}

func TestBuildInternalWeightIgnored(t *testing.T) {
	root := sampleTree()
	root.Size = 100
	tr := mustBuild(t, root)
	assertNear(t, "extent(root)", tr.Extent(0), 3)
}

func TestBuildSingleNode(t *testing.T) {
	tr := mustBuild(t, leaf("only", 0))
	if tr.Len() != 1 || tr.Generations(0) != 1 {
		t.Fatalf("Len/Generations = %d/%d", tr.Len(), tr.Generations(0))
	}
	assertNear(t, "extent", tr.Extent(0), 1)
}

func TestBuildErrors(t *testing.T) {
	cyclic := dir("root", dir("x"))
	cyclic.Items[0].Items = []*Item{cyclic}

	tests := []struct {
		name string
		root DataNode
	}{
		{"nil root", nil},
		{"negative weight", dir("root", leaf("a", -1))},
		{"NaN weight", dir("root", leaf("a", math.NaN()))},
		{"infinite weight", dir("root", leaf("a", math.Inf(1)))},
		{"cycle", cyclic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.root)
			if !errors.Is(err, ErrMalformedTree) {
				t.Errorf("Build err = %v, want ErrMalformedTree", err)
			}
		})
	}
}

func TestBuildSharedNodeIsNotACycle(t *testing.T) {
	shared := leaf("s", 1)
	tr := mustBuild(t, dir("root", dir("x", shared), dir("y", shared)))
	assertNear(t, "extent(root)", tr.Extent(0), 2)
}

func TestBuildDeepChain(t *testing.T) {
	const depth = 100000
	root := dir("n")
	cur := root
	for i := 0; i < depth; i++ {
		next := dir("n")
		cur.Items = []*Item{next}
		cur = next
	}
	tr := mustBuild(t, root)
	if tr.MaxDepth(0) != depth {
		t.Errorf("MaxDepth = %d, want %d", tr.MaxDepth(0), depth)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := mustBuild(t, sampleTree())
	b := mustBuild(t, sampleTree())
	for i := 0; i < a.Len(); i++ {
		if a.Node(NodeID(i)) != b.Node(NodeID(i)) {
			t.Errorf("node %d differs: %+v vs %+v", i, a.Node(NodeID(i)), b.Node(NodeID(i)))
		}
	}
}

// --- Path / Lookup ---

func TestPathAndLookup(t *testing.T) {
	root := sampleTree()
	tr := mustBuild(t, root)

	p := tr.Path(4)
	if len(p) != 3 || p[0] != DataNode(root) || p.Last().(*Item).Name != "d" {
		t.Fatalf("Path(d) = %v", p)
	}
	if id := tr.Lookup(p); id != 4 {
		t.Errorf("Lookup(Path(d)) = %d, want 4", id)
	}
	if id := tr.Lookup(TreePath{root, leaf("stranger", 1)}); id != NoNode {
		t.Errorf("Lookup(unknown) = %d, want NoNode", id)
	}
	if tr.Path(NoNode) != nil {
		t.Error("Path(NoNode) != nil")
	}
	if (TreePath{}).Last() != nil {
		t.Error("empty TreePath.Last() != nil")
	}
}

// --- FindNode ---

func TestFindNodeHalfOpen(t *testing.T) {
	tr := mustBuild(t, sampleTree())
	tests := []struct {
		depth  int
		number float64
		want   NodeID
	}{
		{0, 0, 0},
		{0, 2.999, 0},
		{0, 3, NoNode},
		{1, 0, 1},
		{1, 0.999, 1},
		{1, 1, 2}, // boundary belongs to the right-hand sibling
		{2, 1, 3},
		{2, 2, 4},
		{2, 0.5, NoNode}, // a is a leaf, nothing below it
		{3, 1.5, NoNode},
		{1, -0.1, NoNode},
	}
	for _, tt := range tests {
		if got := tr.FindNode(tt.depth, tt.number); got != tt.want {
			t.Errorf("FindNode(%d, %v) = %d, want %d", tt.depth, tt.number, got, tt.want)
		}
	}
}

func TestFindNodeFromSubtree(t *testing.T) {
	tr := mustBuild(t, sampleTree())
	if got := tr.FindNodeFrom(2, 2, 1.5); got != 3 {
		t.Errorf("FindNodeFrom(b, 2, 1.5) = %d, want 3", got)
	}
	if got := tr.FindNodeFrom(2, 1, 0.5); got != NoNode {
		t.Errorf("FindNodeFrom outside subtree = %d, want NoNode", got)
	}
	if got := tr.FindNodeFrom(2, 0, 1.5); got != NoNode {
		t.Errorf("FindNodeFrom above subtree = %d, want NoNode", got)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	tr := mustBuild(t, sampleTree())
	var seen []NodeID
	tr.Walk(0, func(id NodeID) bool {
		seen = append(seen, id)
		return id != 2
	})
	want := []NodeID{0, 1, 2}
	if len(seen) != len(want) {
		t.Fatalf("Walk visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Walk visited %v, want %v", seen, want)
		}
	}
}

// --- Properties ---

// genItem draws a random tree with up to maxNodes nodes.
func genItem(t *rapid.T, maxNodes int) *Item {
	root := &Item{Name: "root"}
	nodes := []*Item{root}
	n := rapid.IntRange(0, maxNodes-1).Draw(t, "nodes")
	for i := 0; i < n; i++ {
		parent := nodes[rapid.IntRange(0, len(nodes)-1).Draw(t, "parent")]
		c := &Item{Name: "n", Size: float64(rapid.IntRange(0, 9).Draw(t, "size"))}
		parent.Items = append(parent.Items, c)
		nodes = append(nodes, c)
	}
	return root
}

func TestPropertyChildrenPartitionParent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr, err := Build(genItem(t, 40))
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		for i := 0; i < tr.Len(); i++ {
			id := NodeID(i)
			kids := tr.Children(id)
			if len(kids) == 0 {
				want := tr.Data(id).Weight()
				if want == 0 {
					want = 1
				}
				if tr.Extent(id) != want {
					t.Fatalf("leaf %d extent %v, want %v", id, tr.Extent(id), want)
				}
				continue
			}
			left := tr.Left(id)
			sum := 0.0
			for _, k := range kids {
				if !approxEqual(tr.Left(k), left, 1e-9) {
					t.Fatalf("child %d left %v, want %v", k, tr.Left(k), left)
				}
				if tr.Depth(k) != tr.Depth(id)+1 {
					t.Fatalf("child %d depth %d", k, tr.Depth(k))
				}
				left += tr.Extent(k)
				sum += tr.Extent(k)
			}
			if !approxEqual(sum, tr.Extent(id), 1e-9) {
				t.Fatalf("node %d extent %v, children sum %v", id, tr.Extent(id), sum)
			}
		}
	})
}
