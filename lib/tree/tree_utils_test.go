package tree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCountAndHeight(t *testing.T) {
	require.Equal(t, 0, Count(nil))
	require.Equal(t, 0, Height(nil))
	require.Equal(t, 0, BalanceFactor(nil))

	root := link(50, link(20, link(10, leaf(5), nil), leaf(30)), leaf(60))
	require.Equal(t, 6, Count(root))
	require.Equal(t, 4, Height(root))
	require.Equal(t, 2, BalanceFactor(root))
	require.Equal(t, 1, BalanceFactor(root.Left()))
	require.Equal(t, 0, BalanceFactor(root.Right()))
}

func TestForeach(t *testing.T) {
	root := BuildBalancedFromSorted([]int{1, 2, 3, 4, 5, 6, 7}, nil)

	idxs := make([]int, 0, 7)
	values := make([]int, 0, 7)
	Foreach(root, func(idx int, node *Node) bool {
		idxs = append(idxs, idx)
		values = append(values, node.Value())
		return true
	})
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, idxs)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, values)

	values = values[:0]
	Foreach(root, func(idx int, node *Node) bool {
		values = append(values, node.Value())
		return idx < 2
	})
	require.Equal(t, []int{1, 2, 3}, values)

	// Neither of them may panic.
	Foreach(nil, func(int, *Node) bool { return true })
	Foreach(root, nil)
}

func TestLevelOrder(t *testing.T) {
	require.Empty(t, LevelOrder(nil))
	require.Empty(t, InOrder(nil))

	root := BuildBalancedFromSorted([]int{1, 2, 3, 4, 5, 6, 7}, nil)
	require.Equal(t, []int{4, 2, 6, 1, 3, 5, 7}, LevelOrder(root))

	visited := 0
	levelOrder(root, func(idx int, node *Node) bool {
		visited++
		return idx < 3
	})
	require.Equal(t, 4, visited)
}

func TestRelease(t *testing.T) {
	Release(nil)

	parent := NewNode(nil, 100)
	root := BuildBalancedFromSorted([]int{1, 2, 3, 4, 5, 6, 7}, parent)
	parent.attach(root, Left)
	nodes := make([]*Node, 0, 7)
	levelOrder(root, func(_ int, node *Node) bool {
		nodes = append(nodes, node)
		return true
	})

	Release(root)
	require.Nil(t, parent.Left())
	for _, n := range nodes {
		assert.Nil(t, n.Left())
		assert.Nil(t, n.Right())
		assert.Nil(t, n.Parent())
	}
}

func TestBSTViolationValidate(t *testing.T) {
	require.NoError(t, BSTViolationValidate(nil))
	require.NoError(t, BSTViolationValidate(link(2, leaf(1), leaf(3))))

	err := BSTViolationValidate(link(98, link(12, leaf(6), leaf(99)), nil))
	require.ErrorIs(t, err, ErrBSTViolation)
	require.Contains(t, err.Error(), "99")
}

func TestBalanceViolationValidate(t *testing.T) {
	require.NoError(t, BalanceViolationValidate(nil))
	require.NoError(t, BalanceViolationValidate(link(2, leaf(1), nil)))

	err := BalanceViolationValidate(link(3, link(2, leaf(1), nil), nil))
	require.ErrorIs(t, err, ErrBalanceViolation)
	require.Contains(t, err.Error(), "node 3")
}

func TestParentLinkViolationValidate(t *testing.T) {
	require.NoError(t, ParentLinkViolationValidate(nil))

	root := link(2, leaf(1), leaf(3))
	require.NoError(t, ParentLinkViolationValidate(root))

	root.right.parent = root.left
	err := ParentLinkViolationValidate(root)
	require.ErrorIs(t, err, ErrParentLinkBroken)
	require.Contains(t, err.Error(), "right child of 2")

	root.right.parent = root
	root.left.parent = nil
	err = ParentLinkViolationValidate(root)
	require.ErrorIs(t, err, ErrParentLinkBroken)
	require.Contains(t, err.Error(), "left child of 2")
}

func TestHeapOrderViolationValidate(t *testing.T) {
	require.NoError(t, HeapOrderViolationValidate(nil))
	require.NoError(t, HeapOrderViolationValidate(link(9, leaf(9), leaf(1))))

	err := HeapOrderViolationValidate(link(9, link(5, nil, leaf(6)), leaf(1)))
	require.ErrorIs(t, err, ErrHeapOrderViolation)
	require.Contains(t, err.Error(), "node 6 above parent 5")

	// A broken back-link does not confuse the order check.
	root := link(9, leaf(10), nil)
	root.left.parent = nil
	require.ErrorIs(t, HeapOrderViolationValidate(root), ErrHeapOrderViolation)
}

func TestCompleteViolationValidate(t *testing.T) {
	require.NoError(t, CompleteViolationValidate(nil))
	require.NoError(t, CompleteViolationValidate(link(9, link(8, leaf(1), nil), leaf(7))))

	require.ErrorIs(t, CompleteViolationValidate(link(9, nil, leaf(1))), ErrHeapIncomplete)
	// The gap sits one level above the offending node.
	err := CompleteViolationValidate(link(9, link(8, nil, nil), link(7, leaf(2), nil)))
	require.ErrorIs(t, err, ErrHeapIncomplete)
	require.Contains(t, err.Error(), "node 2")
}

func TestMaxHeapValidate(t *testing.T) {
	require.NoError(t, MaxHeapValidate(nil))
	require.NoError(t, MaxHeapValidate(link(9, link(8, leaf(1), nil), leaf(7))))

	parent := NewNode(nil, 100)
	child := NewNode(parent, 1)
	require.ErrorIs(t, MaxHeapValidate(child), ErrHeapRootHasParent)

	// Out of order, not complete and with a broken back-link.
	root := link(1, nil, leaf(5))
	root.right.parent = nil
	err := MaxHeapValidate(root)
	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	require.True(t, errors.Is(err, ErrHeapOrderViolation))
	require.True(t, errors.Is(err, ErrHeapIncomplete))
	require.True(t, errors.Is(err, ErrParentLinkBroken))
}
