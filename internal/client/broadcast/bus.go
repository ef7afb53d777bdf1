// Package broadcast propagates local note edits between open views of the
// same note, so sibling views stay consistent without touching the remote
// store. The transport is an in-process bus; the message shape keeps a sender
// id so a view can ignore its own publications, which also makes the scheme
// portable to inter-process transports.
package broadcast

import (
	"sync"

	"github.com/google/uuid"
)

// Message carries one content update for a note.
type Message struct {
	NoteID   string
	Content  string
	SenderID string
}

// Bus is a topic-less fan-out of note updates. Safe for concurrent use.
// Publishing never blocks: a subscriber that cannot keep up misses messages.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Message
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Message)}
}

// Publish fans the message out to every subscriber.
func (b *Bus) Publish(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscription receives every published message until cancelled.
type Subscription struct {
	C      <-chan Message
	id     int
	parent *Bus
}

// Cancel detaches the subscription and closes its channel.
func (s *Subscription) Cancel() {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if ch, ok := s.parent.subs[s.id]; ok {
		delete(s.parent.subs, s.id)
		close(ch)
	}
}

// Subscribe registers a consumer with a small delivery buffer.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Message, 16)
	id := b.next
	b.next++
	b.subs[id] = ch
	return &Subscription{C: ch, id: id, parent: b}
}

// View is one open editor's handle on the bus: it publishes with a unique
// sender id and delivers only updates for its note that came from elsewhere.
type View struct {
	bus      *Bus
	noteID   string
	senderID string
	sub      *Subscription
	done     chan struct{}
}

// NewView attaches a view of the given note to the bus. onReceive is invoked
// (on a background goroutine) for every foreign update of this note.
func NewView(bus *Bus, noteID string, onReceive func(content string)) *View {
	if onReceive == nil {
		onReceive = func(string) {}
	}
	v := &View{
		bus:      bus,
		noteID:   noteID,
		senderID: uuid.NewString(),
		sub:      bus.Subscribe(),
		done:     make(chan struct{}),
	}

	go func() {
		for {
			select {
			case msg, ok := <-v.sub.C:
				if !ok {
					return
				}
				if msg.NoteID != v.noteID || msg.SenderID == v.senderID {
					continue
				}
				onReceive(msg.Content)
			case <-v.done:
				return
			}
		}
	}()

	return v
}

// Broadcast publishes this view's current content to sibling views.
func (v *View) Broadcast(content string) {
	v.bus.Publish(Message{NoteID: v.noteID, Content: content, SenderID: v.senderID})
}

// Close detaches the view from the bus.
func (v *View) Close() {
	close(v.done)
	v.sub.Cancel()
}
