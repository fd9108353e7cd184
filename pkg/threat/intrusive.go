package threat

// listNode is an intrusive doubly-linked list node embedded in each Window, one per
// player perspective. This is the free-standing low-level structure the package needs:
// each window must support O(1) unlink/relink as its bucket membership changes on
// every move, which a generic container (e.g. container/list, which heap-allocates a
// wrapper element per insertion) would not give for free without extra bookkeeping to
// map back from element to window. Embedding the link pointers directly in Window
// avoids that indirection.
type listNode struct {
	prev, next *Window
}

// bucketList is a doubly-linked list of windows sharing a (player, own, opp) bucket,
// referenced by perspective index persp (0 or 1, see Index).
type bucketList struct {
	head *Window
}

func (b *bucketList) pushFront(w *Window, persp int) {
	w.node[persp].prev = nil
	w.node[persp].next = b.head
	if b.head != nil {
		b.head.node[persp].prev = w
	}
	b.head = w
}

func (b *bucketList) remove(w *Window, persp int) {
	n := &w.node[persp]
	if n.prev != nil {
		n.prev.node[persp].next = n.next
	} else {
		b.head = n.next
	}
	if n.next != nil {
		n.next.node[persp].prev = n.prev
	}
	n.prev, n.next = nil, nil
}

// iterate appends every window in the bucket to dst, in no particular order.
func (b *bucketList) iterate(persp int, dst []*Window) []*Window {
	for w := b.head; w != nil; w = w.node[persp].next {
		dst = append(dst, w)
	}
	return dst
}
