package tree

import "errors"

type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Unknown"
}

var (
	ErrTreeEmpty          = errors.New("[tree] empty tree")
	ErrBSTViolation       = errors.New("[tree] binary search tree violation")
	ErrBalanceViolation   = errors.New("[tree] balance factor violation")
	ErrParentLinkBroken   = errors.New("[tree] parent link violation")
	ErrAVLDuplicateValue  = errors.New("[avl] duplicate value")
	ErrHeapNilRootRef     = errors.New("[heap] nil root reference")
	ErrHeapEmpty          = errors.New("[heap] empty heap")
	ErrHeapOrderViolation = errors.New("[heap] max-heap order violation")
	ErrHeapIncomplete     = errors.New("[heap] complete tree violation")
	ErrHeapRootHasParent  = errors.New("[heap] root has parent")
)

// MaxHeap owns a pointer based max binary heap.
// Push and Pop exchange node values, never node identities,
// so the node returned by Push stays the same allocation.
type MaxHeap interface {
	Len() int64
	Root() *Node
	Push(value int) *Node
	Pop() (int, error)
	Peek() (int, error)
	// Foreach visits the nodes in level order.
	Foreach(action func(idx int, node *Node) bool)
	Release()
}
