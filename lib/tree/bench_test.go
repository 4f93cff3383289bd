package tree

import (
	randv2 "math/rand/v2"
	"testing"

	"github.com/samber/lo"
)

func BenchmarkHeapInsert(b *testing.B) {
	var root *Node
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// HeapInsert counts the nodes on every call.
		if i&4095 == 0 {
			root = nil
		}
		_, _ = HeapInsert(&root, randv2.Int())
	}
}

func BenchmarkMaxHeapPushPop(b *testing.B) {
	h := NewMaxHeap(WithMaxHeapValues(lo.Times(1_024, func(int) int {
		return randv2.Int()
	})...))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Push(randv2.Int())
		_, _ = h.Pop()
	}
}

func BenchmarkBuildBalancedFromSorted(b *testing.B) {
	values := lo.Range(4_096)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildBalancedFromSorted(values, nil)
	}
}

func BenchmarkIsBalancedSearchTree(b *testing.B) {
	root := BuildBalancedFromSorted(lo.Range(4_096), nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = IsBalancedSearchTree(root)
	}
}
