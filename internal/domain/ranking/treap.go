package ranking

// Treap ordered by value DESC, then row ASC. In-order traversal yields the
// table from best to worst. Priorities are a hash of the row so the shape is
// deterministic for a given input.

type node struct {
	row   int
	value float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aValue, aRow) ranks before (bValue, bRow).
func less(aValue float64, aRow int, bValue float64, bRow int) bool {
	if aValue != bValue {
		return aValue > bValue
	}
	return aRow < bRow
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// rowPriority is splitmix64 over the row index.
func rowPriority(row int) uint64 {
	z := uint64(row) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func insert(n *node, row int, value float64) *node {
	if n == nil {
		return &node{row: row, value: value, prio: rowPriority(row), size: 1}
	}
	if less(value, row, n.value, n.row) {
		n.left = insert(n.left, row, value)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, row, value)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// collectTopN appends up to limit rows in rank order.
func collectTopN(n *node, limit int, out *[]int) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.row)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// index is an ordered set of (value, row) pairs.
type index struct {
	root *node
}

func (ix *index) Insert(row int, value float64) {
	ix.root = insert(ix.root, row, value)
}

func (ix *index) Len() int { return nsize(ix.root) }

func (ix *index) TopN(n int) []int {
	out := make([]int, 0, min(n, ix.Len()))
	collectTopN(ix.root, n, &out)
	return out
}
