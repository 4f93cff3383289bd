package tree

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/benz9527/xbtree/lib/xlog"
)

var _ MaxHeap = (*maxHeap)(nil)

type maxHeap struct {
	root      *Node
	count     int64
	lock      *sync.Mutex
	stats     *heapStats
	logger    xlog.XLogger
	statsName string
	values    []int
}

func (h *maxHeap) Len() int64 {
	return atomic.LoadInt64(&h.count)
}

func (h *maxHeap) Root() *Node {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	return h.root
}

func (h *maxHeap) Push(value int) *Node {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	return h.push(value)
}

func (h *maxHeap) push(value int) *Node {
	node, swaps, err := heapPush(&h.root, value, int(atomic.LoadInt64(&h.count)))
	if err != nil {
		// impossible run to here, the heap owns its shape
		panic( /* debug assertion */ err)
	}
	atomic.AddInt64(&h.count, 1)
	h.stats.RecordPush(swaps)
	h.logger.Debug("[heap] pushed",
		zap.Int("value", value),
		zap.Int("swaps", swaps),
		zap.Int64("len", atomic.LoadInt64(&h.count)),
	)
	return node
}

func (h *maxHeap) Pop() (int, error) {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	val, swaps, ok := heapPop(&h.root, int(atomic.LoadInt64(&h.count)))
	if !ok {
		h.stats.IncreaseEmptyPopCount()
		h.logger.Warn("[heap] pop from empty heap")
		return 0, ErrHeapEmpty
	}
	atomic.AddInt64(&h.count, -1)
	h.stats.RecordPop(swaps)
	h.logger.Debug("[heap] popped",
		zap.Int("value", val),
		zap.Int("swaps", swaps),
		zap.Int64("len", atomic.LoadInt64(&h.count)),
	)
	return val, nil
}

func (h *maxHeap) Peek() (int, error) {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	if h.root == nil {
		return 0, ErrHeapEmpty
	}
	return h.root.value, nil
}

func (h *maxHeap) Foreach(action func(idx int, node *Node) bool) {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	levelOrder(h.root, action)
}

func (h *maxHeap) Release() {
	if h.lock != nil {
		h.lock.Lock()
		defer h.lock.Unlock()
	}
	Release(h.root)
	h.root = nil
	h.stats.RecordRelease(atomic.SwapInt64(&h.count, 0))
}

type MaxHeapOption func(*maxHeap)

func WithMaxHeapThreadSafe() MaxHeapOption {
	return func(h *maxHeap) {
		h.lock = &sync.Mutex{}
	}
}

// WithMaxHeapStats records the heap metrics with the global otel meter provider.
func WithMaxHeapStats(name string) MaxHeapOption {
	return func(h *maxHeap) {
		if len(name) <= 0 {
			name = "default"
		}
		h.statsName = name
	}
}

func WithMaxHeapLogger(logger xlog.XLogger) MaxHeapOption {
	return func(h *maxHeap) {
		h.logger = logger
	}
}

// WithMaxHeapValues pushes the values in order after the heap is set up.
func WithMaxHeapValues(values ...int) MaxHeapOption {
	return func(h *maxHeap) {
		h.values = append(h.values, values...)
	}
}

func NewMaxHeap(opts ...MaxHeapOption) MaxHeap {
	h := &maxHeap{}
	for _, o := range opts {
		if o != nil {
			o(h)
		}
	}
	if h.logger == nil {
		h.logger = xlog.NewNopXLogger()
	}
	if len(h.statsName) > 0 {
		h.stats = newHeapStats(h.statsName)
	}
	for _, v := range h.values {
		h.push(v)
	}
	h.values = nil
	return h
}
