// mailbox.go — the schedulable work item of the demo runtime
//
// A Mailbox is an actor's pending-message queue. The scheduling core never
// looks inside it: it only moves the embedded intrusive node between queue
// tiers. The runtime's scheduled flag is the bookkeeping that upholds the
// core's contract — a mailbox is linked into at most one queue at a time,
// marked runnable before push and idle again only after its handler drains.

package main

import (
	"sync/atomic"
	"unsafe"

	"actorruntime/spin"
	"actorruntime/workq"
)

// Message is the demo payload. Fixed-size, no pointers, no ownership.
type Message struct {
	Kind uint32 // Application-defined discriminator
	A    uint64 // First operand (hop counters in the demo workload)
	B    uint64 // Second operand
}

// Behavior is the message handler an actor runs for each delivery. It
// executes on a worker thread; sends from inside a behavior use the worker's
// own context so continuations stay thread-local.
type Behavior func(w *Worker, mb *Mailbox, m Message)

// Mailbox couples a message FIFO with the intrusive scheduling node.
// The node MUST stay the first field: the scheduler hands nodes back and
// the runtime recovers the mailbox with a single pointer cast.
type Mailbox struct {
	node      workq.Node // intrusive link, first field
	scheduled uint32     // atomic: 1 while queued or being processed
	id        int
	behavior  Behavior

	// Message FIFO, guarded by its own lock: senders on any thread append
	// while the owning worker drains. Critical sections are O(1)-ish slice
	// ops, short enough for a spin lock.
	lock spin.Lock
	head int
	msgs []Message
}

// NewMailbox constructs a mailbox with the given behavior.
func NewMailbox(id int, behavior Behavior) *Mailbox {
	return &Mailbox{id: id, behavior: behavior}
}

// mailboxOf recovers the enclosing mailbox from a popped scheduling node.
//
//go:nosplit
//go:inline
func mailboxOf(n *workq.Node) *Mailbox {
	return (*Mailbox)(unsafe.Pointer(n))
}

// put appends one message and reports whether the mailbox transitioned
// from idle to runnable — exactly one concurrent sender wins the
// transition and becomes responsible for pushing the node.
func (mb *Mailbox) put(m Message) bool {
	mb.lock.Lock()
	mb.msgs = append(mb.msgs, m)
	mb.lock.Unlock()
	return atomic.CompareAndSwapUint32(&mb.scheduled, 0, 1)
}

// take removes the oldest pending message, compacting the backing slice
// once the drained prefix dominates it.
func (mb *Mailbox) take() (Message, bool) {
	mb.lock.Lock()
	if mb.head == len(mb.msgs) {
		mb.head = 0
		mb.msgs = mb.msgs[:0]
		mb.lock.Unlock()
		return Message{}, false
	}
	m := mb.msgs[mb.head]
	mb.head++
	if mb.head > 64 && mb.head*2 > len(mb.msgs) {
		n := copy(mb.msgs, mb.msgs[mb.head:])
		mb.msgs = mb.msgs[:n]
		mb.head = 0
	}
	mb.lock.Unlock()
	return m, true
}

// pending reports whether undelivered messages remain.
func (mb *Mailbox) pending() bool {
	mb.lock.Lock()
	p := mb.head != len(mb.msgs)
	mb.lock.Unlock()
	return p
}

// idle reports whether the mailbox is neither queued nor being processed.
// Used by the shutdown drain loop together with Queue.Empty.
func (mb *Mailbox) idle() bool {
	return atomic.LoadUint32(&mb.scheduled) == 0
}
