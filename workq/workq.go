// workq.go
//
// Intrusive, ownership-free FIFO of work-item nodes. The list stores raw
// links threaded through externally owned items: it never allocates, copies,
// or frees a payload, only holds and hands back pointers. A work item gains
// list membership by embedding a Node as its FIRST field, so the enclosing
// item is recoverable from the node with a single pointer cast.
//
// The list is deliberately unsynchronized. Callers fall into exactly two
// legal patterns: a thread-confined local queue touched only by its owning
// thread, or a shared queue whose every access is funneled through one lock.
// Mixing patterns corrupts the links.

package workq

// Node is the intrusive link embedded in schedulable items.
// An item must be in at most one list at a time; pushing a node that is
// already linked silently corrupts both lists. The owner's lifetime is
// managed entirely outside the list — pushing an item whose owner is about
// to be freed is a caller bug the list cannot detect.
type Node struct {
	next *Node
}

// List is a FIFO of intrusive nodes with O(1) push and pop.
// The zero value is an empty list ready for use.
type List struct {
	head  *Node
	tail  *Node
	count int
}

// Push appends n to the tail of the list.
//
//go:nosplit
//go:inline
func (l *List) Push(n *Node) {
	n.next = nil
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.count++
}

// Pop removes and returns the head of the list, or nil if the list is empty.
// The returned node is unlinked before it is handed back.
//
//go:nosplit
//go:inline
func (l *List) Pop() *Node {
	n := l.head
	if n == nil {
		return nil
	}
	l.head = n.next
	if l.head == nil {
		l.tail = nil
	}
	n.next = nil
	l.count--
	return n
}

// Empty reports whether the list holds no nodes.
//
//go:nosplit
//go:inline
func (l *List) Empty() bool {
	return l.head == nil
}

// Count returns the number of linked nodes. Used by release-time drain
// checks to report exactly how many items would otherwise leak.
//
//go:nosplit
//go:inline
func (l *List) Count() int {
	return l.count
}
