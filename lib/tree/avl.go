package tree

import (
	"slices"

	"go.uber.org/multierr"
)

// interval is an open interval, each side may be unbounded.
type interval struct {
	min, max       int
	hasMin, hasMax bool
}

var unbounded = interval{}

func (iv interval) contains(v int) bool {
	if iv.hasMin && v <= iv.min {
		return false
	}
	if iv.hasMax && v >= iv.max {
		return false
	}
	return true
}

func (iv interval) below(v int) interval {
	iv.max, iv.hasMax = v, true
	return iv
}

func (iv interval) above(v int) interval {
	iv.min, iv.hasMin = v, true
	return iv
}

// IsBalancedSearchTree reports whether root is a valid AVL tree:
// strict BST order through all ancestors and a balance factor
// in {-1, 0, 1} at every node. A nil tree is reported as invalid.
func IsBalancedSearchTree(root *Node) bool {
	if root == nil {
		return false
	}
	_, ok := avlHeight(root, unbounded)
	return ok
}

// avlHeight returns the height of node, and false as soon as
// the BST order or the balance factor is violated below node.
func avlHeight(node *Node, iv interval) (int, bool) {
	if node == nil {
		return 0, true
	}
	if !iv.contains(node.value) {
		return 0, false
	}
	lh, ok := avlHeight(node.left, iv.below(node.value))
	if !ok {
		return 0, false
	}
	rh, ok := avlHeight(node.right, iv.above(node.value))
	if !ok {
		return 0, false
	}
	if bf := lh - rh; bf < -1 || bf > 1 {
		return 0, false
	}
	return 1 + max(lh, rh), true
}

// BuildBalancedFromSorted builds a minimal height tree from values,
// which must be sorted ascending (not verified). The returned root has
// its parent link set to parent but is not attached under it.
func BuildBalancedFromSorted(values []int, parent *Node) *Node {
	if len(values) == 0 {
		return nil
	}
	return buildRange(values, 0, len(values)-1, parent)
}

func buildRange(values []int, lo, hi int, parent *Node) *Node {
	if lo > hi {
		return nil
	}
	mid := lo + (hi-lo)/2
	node := NewNode(parent, values[mid])
	node.left = buildRange(values, lo, mid-1, node)
	node.right = buildRange(values, mid+1, hi, node)
	return node
}

// NewSortedAVL sorts a copy of values and builds a validated AVL tree.
// Duplicated values are rejected because the BST order is strict.
func NewSortedAVL(values []int) (*Node, error) {
	if len(values) == 0 {
		return nil, ErrTreeEmpty
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, ErrAVLDuplicateValue
		}
	}
	root := BuildBalancedFromSorted(sorted, nil)
	if err := AVLValidate(root); err != nil {
		return nil, err
	}
	return root, nil
}

// AVLValidate reports every AVL rule violated by root.
func AVLValidate(root *Node) error {
	if root == nil {
		return ErrTreeEmpty
	}
	return multierr.Combine(
		BSTViolationValidate(root),
		BalanceViolationValidate(root),
		ParentLinkViolationValidate(root),
	)
}
