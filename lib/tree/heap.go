package tree

import (
	"math/bits"
)

/*
A complete binary tree numbered in level order starting from 1.
Children of index i are 2i and 2i+1, so the bits of an index
below its leading bit spell the path from the root (0: left, 1: right).

	          1
	        /   \
	       2     3
	      / \   / \
	     4   5 6   7
	    /
	   8            8 = 0b1000 => left, left, left
*/

// nodeAt walks from root to the node numbered idx, nil if absent.
func nodeAt(root *Node, idx int) *Node {
	if idx < 1 {
		return nil
	}
	aux := root
	for shift := bits.Len(uint(idx)) - 2; shift >= 0 && aux != nil; shift-- {
		if (idx>>shift)&1 == 0 {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return aux
}

// slotOf returns the parent and the side of the free slot numbered idx.
func slotOf(root *Node, idx int) (*Node, Direction) {
	p := nodeAt(root, idx>>1)
	if idx&1 == 0 {
		return p, Left
	}
	return p, Right
}

// lastInLevelOrder is the fallback locator for trees that are not complete.
func lastInLevelOrder(root *Node) *Node {
	var last *Node
	levelOrder(root, func(_ int, node *Node) bool {
		last = node
		return true
	})
	return last
}

// siftUp moves the value of node upwards while it exceeds its parent.
// It returns the node where the value rests and the swap count.
func siftUp(node *Node) (*Node, int) {
	swaps := 0
	for node.parent != nil && node.value > node.parent.value {
		node.swapValue(node.parent)
		node = node.parent
		swaps++
	}
	return node, swaps
}

// siftDown moves the value of node downwards while a child exceeds it.
func siftDown(node *Node) int {
	swaps := 0
	for node != nil {
		largest := node
		if node.left != nil && node.left.value > largest.value {
			largest = node.left
		}
		if node.right != nil && node.right.value > largest.value {
			largest = node.right
		}
		if largest == node {
			break
		}
		node.swapValue(largest)
		node = largest
		swaps++
	}
	return swaps
}

// heapPush inserts value into the heap of size nodes (size < 0 means unknown).
func heapPush(root **Node, value int, size int) (*Node, int, error) {
	if root == nil {
		return nil, 0, ErrHeapNilRootRef
	}
	node := NewNode(nil, value)
	if *root == nil {
		*root = node
		return node, 0, nil
	}
	if size < 0 {
		size = Count(*root)
	}
	p, dir := slotOf(*root, size+1)
	if p == nil || (dir == Left && p.left != nil) || (dir == Right && p.right != nil) {
		return nil, 0, ErrHeapIncomplete
	}
	p.attach(node, dir)
	_, swaps := siftUp(node)
	return node, swaps, nil
}

// heapPop removes the maximum of the heap of size nodes (size < 0 means unknown).
func heapPop(root **Node, size int) (int, int, bool) {
	if root == nil || *root == nil {
		return 0, 0, false
	}
	top := *root
	val := top.value
	if top.isLeaf() {
		*root = nil
		return val, 0, true
	}
	if size < 0 {
		size = Count(top)
	}
	last := nodeAt(top, size)
	if last == nil || !last.isLeaf() {
		last = lastInLevelOrder(top)
	}
	top.value = last.value
	last.detach()
	return val, siftDown(top), true
}

// HeapInsert adds value to the max heap rooted at *root and restores the
// heap order by exchanging values upwards. The returned node is the new
// allocation, which may no longer hold value once sift-up has run.
// An empty heap gets the new node as its root.
func HeapInsert(root **Node, value int) (*Node, error) {
	node, _, err := heapPush(root, value, -1)
	return node, err
}

// HeapExtract removes the maximum of the heap. The bool is false for an
// empty heap, in which case nothing is changed.
func HeapExtract(root **Node) (int, bool) {
	val, _, ok := heapPop(root, -1)
	return val, ok
}

// HeapExtractMax removes and returns the maximum of the heap.
// An empty heap yields 0, indistinguishable from a stored 0;
// use HeapExtract to tell them apart.
func HeapExtractMax(root **Node) int {
	val, _ := HeapExtract(root)
	return val
}
