package services

import "sync"

// BufferedEvent is one realtime event held for replay
type BufferedEvent struct {
	Event   string
	Payload map[string]interface{}
}

type NotificationBuffer struct {
	MaxLength int
	items     []*BufferedEvent
}

func (buf *NotificationBuffer) Push(evt *BufferedEvent) {

	// If there is still room under the max, add it
	if len(buf.items) < buf.MaxLength {
		buf.items = append(buf.items, evt)
		return
	}

	// Move everything over one space
	for i := 1; i < len(buf.items); i++ {
		buf.items[i-1] = buf.items[i]
	}

	// Insert the new event in the last slot
	buf.items[len(buf.items)-1] = evt

}

func (buf *NotificationBuffer) GetCopy() []*BufferedEvent {

	// Create the new slice for elements
	items := make([]*BufferedEvent, len(buf.items))

	// Copy all the elements
	for i := range buf.items {
		items[i] = buf.items[i]
	}

	// Return the new slice
	return items

}

// NotificationBufferGroup holds the per-account replay buffers
type NotificationBufferGroup struct {
	accountBuffers    map[uint64]*NotificationBuffer
	accountBuffersMut sync.RWMutex
}

func (g *NotificationBufferGroup) Setup() {
	g.accountBuffers = map[uint64]*NotificationBuffer{}
}

func (g *NotificationBufferGroup) PushEvent(accountID uint64, evt *BufferedEvent) {

	// Lock on the buffers
	g.accountBuffersMut.Lock()
	defer g.accountBuffersMut.Unlock()

	// Get the buffer for this account
	buf, ok := g.accountBuffers[accountID]
	if !ok {
		buf = &NotificationBuffer{
			MaxLength: 25,
		}
		g.accountBuffers[accountID] = buf
	}

	// Push the event
	buf.Push(evt)

}

func (g *NotificationBufferGroup) CopyEvents(accountID uint64) []*BufferedEvent {

	// Lock on the buffers
	g.accountBuffersMut.RLock()
	defer g.accountBuffersMut.RUnlock()

	// Get the buffer for this account
	buf, ok := g.accountBuffers[accountID]
	if !ok {
		return nil
	}

	// Return a copy of the buffered events
	return buf.GetCopy()

}
