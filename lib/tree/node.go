package tree

// Node is a binary tree node holding a single int.
// left and right own the subtrees, parent is only a back reference
// and is nil for the root.
type Node struct {
	parent *Node
	left   *Node
	right  *Node
	value  int
}

// NewNode creates a detached node whose parent link points at parent.
// The node is not attached under parent.
func NewNode(parent *Node, value int) *Node {
	return &Node{
		parent: parent,
		value:  value,
	}
}

func (node *Node) Value() int {
	if node == nil {
		return 0
	}
	return node.value
}

func (node *Node) Left() *Node {
	if node == nil {
		return nil
	}
	return node.left
}

func (node *Node) Right() *Node {
	if node == nil {
		return nil
	}
	return node.right
}

func (node *Node) Parent() *Node {
	if node == nil {
		return nil
	}
	return node.parent
}

func (node *Node) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *Node) isLeaf() bool {
	return node != nil && node.left == nil && node.right == nil
}

func (node *Node) Direction() Direction {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[tree] nil node without direction")
	}
	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

// attach links child under node on the dir side.
func (node *Node) attach(child *Node, dir Direction) {
	switch dir {
	case Left:
		node.left = child
	case Right:
		node.right = child
	default:
		// impossible run to here
		panic( /* debug assertion */ "[tree] attach child to unknown direction")
	}
	if child != nil {
		child.parent = node
	}
}

// detach unlinks the node from its parent. The node keeps its children.
func (node *Node) detach() {
	if node == nil || node.parent == nil {
		return
	}
	p := node.parent
	if p.left == node {
		p.left = nil
	} else if p.right == node {
		p.right = nil
	}
	node.parent = nil
}

func (node *Node) swapValue(other *Node) {
	node.value, other.value = other.value, node.value
}
