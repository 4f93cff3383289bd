package tree

import (
	"fmt"

	"go.uber.org/multierr"
)

// Count returns the number of nodes below and including root.
func Count(root *Node) int {
	n := 0
	levelOrder(root, func(int, *Node) bool {
		n++
		return true
	})
	return n
}

// Height of a nil tree is 0, of a single node 1.
func Height(root *Node) int {
	if root == nil {
		return 0
	}
	return 1 + max(Height(root.left), Height(root.right))
}

// BalanceFactor is height(left) - height(right).
func BalanceFactor(node *Node) int {
	if node == nil {
		return 0
	}
	return Height(node.left) - Height(node.right)
}

// Inorder traversal with an explicit stack to implement the DFS.
func Foreach(root *Node, action func(idx int, node *Node) bool) {
	if root == nil || action == nil {
		return
	}

	stack := make([]*Node, 0, 32)
	defer func() {
		clear(stack)
	}()

	aux := root
	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := 0
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// BFS traversal, idx is the 0-based level order position.
func levelOrder(root *Node, action func(idx int, node *Node) bool) {
	if root == nil {
		return
	}

	queue := make([]*Node, 0, 32)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, root)

	for idx := 0; len(queue) > 0; idx++ {
		aux := queue[0]
		queue = queue[1:]
		if !action(idx, aux) {
			return
		}
		if aux.left != nil {
			queue = append(queue, aux.left)
		}
		if aux.right != nil {
			queue = append(queue, aux.right)
		}
	}
}

func InOrder(root *Node) []int {
	values := make([]int, 0, 32)
	Foreach(root, func(_ int, node *Node) bool {
		values = append(values, node.value)
		return true
	})
	return values
}

func LevelOrder(root *Node) []int {
	values := make([]int, 0, 32)
	levelOrder(root, func(_ int, node *Node) bool {
		values = append(values, node.value)
		return true
	})
	return values
}

// Release unlinks every node of the tree.
func Release(root *Node) {
	if root == nil {
		return
	}
	root.detach()

	stack := make([]*Node, 0, 32)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)

	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.left, aux.right, aux.parent = nil, nil, nil
	}
}

// tree rule validation utilities.
// Each validator returns nil for a nil tree.

// BSTViolationValidate checks strict ordering against the bounds
// inherited from all ancestors, not only the direct parent.
func BSTViolationValidate(root *Node) error {
	type frame struct {
		node *Node
		iv   interval
	}
	if root == nil {
		return nil
	}
	stack := []frame{{root, unbounded}}
	for size := len(stack); size > 0; size = len(stack) {
		f := stack[size-1]
		stack = stack[:size-1]
		if !f.iv.contains(f.node.value) {
			return fmt.Errorf("%w: node %d out of its ancestors' bounds", ErrBSTViolation, f.node.value)
		}
		if f.node.left != nil {
			stack = append(stack, frame{f.node.left, f.iv.below(f.node.value)})
		}
		if f.node.right != nil {
			stack = append(stack, frame{f.node.right, f.iv.above(f.node.value)})
		}
	}
	return nil
}

// BalanceViolationValidate checks |height(left) - height(right)| <= 1 at every node.
func BalanceViolationValidate(root *Node) error {
	_, err := balancedHeight(root)
	return err
}

func balancedHeight(node *Node) (int, error) {
	if node == nil {
		return 0, nil
	}
	lh, err := balancedHeight(node.left)
	if err != nil {
		return 0, err
	}
	rh, err := balancedHeight(node.right)
	if err != nil {
		return 0, err
	}
	if bf := lh - rh; bf < -1 || bf > 1 {
		return 0, fmt.Errorf("%w: node %d balance factor %d", ErrBalanceViolation, node.value, bf)
	}
	return 1 + max(lh, rh), nil
}

// ParentLinkViolationValidate checks that every child points back to its parent.
func ParentLinkViolationValidate(root *Node) error {
	var err error
	levelOrder(root, func(_ int, node *Node) bool {
		if node.left != nil && node.left.parent != node {
			err = fmt.Errorf("%w: left child of %d", ErrParentLinkBroken, node.value)
			return false
		}
		if node.right != nil && node.right.parent != node {
			err = fmt.Errorf("%w: right child of %d", ErrParentLinkBroken, node.value)
			return false
		}
		return true
	})
	return err
}

// HeapOrderViolationValidate checks that no child exceeds its parent.
func HeapOrderViolationValidate(root *Node) error {
	var err error
	levelOrder(root, func(_ int, node *Node) bool {
		for _, child := range [2]*Node{node.left, node.right} {
			if child != nil && child.value > node.value {
				err = fmt.Errorf("%w: node %d above parent %d", ErrHeapOrderViolation, child.value, node.value)
				return false
			}
		}
		return true
	})
	return err
}

// CompleteViolationValidate checks that every level is full except
// possibly the last one, which is filled from left to right.
func CompleteViolationValidate(root *Node) error {
	var err error
	hole := false
	levelOrder(root, func(_ int, node *Node) bool {
		for _, child := range [2]*Node{node.left, node.right} {
			if child == nil {
				hole = true
			} else if hole {
				err = fmt.Errorf("%w: gap before node %d", ErrHeapIncomplete, child.value)
				return false
			}
		}
		return true
	})
	return err
}

// MaxHeapValidate reports every max-heap rule violated by root.
func MaxHeapValidate(root *Node) error {
	if root == nil {
		return nil
	}
	var err error
	if root.parent != nil {
		err = ErrHeapRootHasParent
	}
	return multierr.Combine(
		err,
		HeapOrderViolationValidate(root),
		CompleteViolationValidate(root),
		ParentLinkViolationValidate(root),
	)
}
