// Package channels implements the control bus's named pub/sub channels:
// a subscriber set plus a FIFO message queue per channel, consumed by
// RPOP (the protocol's Redis-flavored name for a plain dequeue-from-head
// operation — no broadcast fanout).
package channels

import "sync"

// ConnID identifies a connection for subscriber-set membership.
type ConnID int64

// Message is one queued item.
type Message struct {
	Channel string
	Content string
}

type channel struct {
	subscribers map[ConnID]struct{}
	queue       []Message
}

func newChannel() *channel {
	return &channel{subscribers: make(map[ConnID]struct{})}
}

func (c *channel) empty() bool {
	return len(c.subscribers) == 0 && len(c.queue) == 0
}

// Manager owns the full set of named channels. All methods are safe for
// concurrent use; a single RWMutex guards the channel map, matching the
// single-writer-lock-over-the-map model the protocol is specified
// against.
type Manager struct {
	mu       sync.RWMutex
	channels map[string]*channel
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{channels: make(map[string]*channel)}
}

// Subscribe adds conn to channelName's subscriber set, auto-creating the
// channel. Idempotent.
func (m *Manager) Subscribe(channelName string, conn ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.getOrCreateLocked(channelName)
	ch.subscribers[conn] = struct{}{}
}

// Unsubscribe removes conn from channelName's subscriber set. If the
// channel is left with no subscribers and an empty queue, it is
// deleted.
func (m *Manager) Unsubscribe(channelName string, conn ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channelName]
	if !ok {
		return
	}
	delete(ch.subscribers, conn)
	if ch.empty() {
		delete(m.channels, channelName)
	}
}

// UnsubscribeAll removes conn from every channel's subscriber set,
// deleting any channel left empty. Called on connection teardown.
func (m *Manager) UnsubscribeAll(conn ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, ch := range m.channels {
		delete(ch.subscribers, conn)
		if ch.empty() {
			delete(m.channels, name)
		}
	}
}

// Publish appends content to channelName's queue, auto-creating the
// channel, and returns the current subscriber count. The count is
// informational only: delivery happens via explicit RPop, not push.
func (m *Manager) Publish(channelName, content string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.getOrCreateLocked(channelName)
	ch.queue = append(ch.queue, Message{Channel: channelName, Content: content})
	return len(ch.subscribers)
}

// RPop dequeues the oldest message from channelName, if any. A channel
// left empty by the pop (no subscribers, no remaining queue) is
// deleted.
func (m *Manager) RPop(channelName string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[channelName]
	if !ok || len(ch.queue) == 0 {
		return "", false
	}
	msg := ch.queue[0]
	ch.queue = ch.queue[1:]
	if ch.empty() {
		delete(m.channels, channelName)
	}
	return msg.Content, true
}

// PopMessage is RPop's Message-returning variant, kept for callers that
// want the channel name alongside the content.
func (m *Manager) PopMessage(channelName string) (Message, bool) {
	content, ok := m.RPop(channelName)
	if !ok {
		return Message{}, false
	}
	return Message{Channel: channelName, Content: content}, true
}

// QueueLength reports how many messages are queued on channelName (0 if
// the channel doesn't exist).
func (m *Manager) QueueLength(channelName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[channelName]
	if !ok {
		return 0
	}
	return len(ch.queue)
}

// ListChannels returns the names of all currently-live channels.
func (m *Manager) ListChannels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.channels))
	for name := range m.channels {
		out = append(out, name)
	}
	return out
}

// Subscribers returns the connection ids subscribed to channelName.
func (m *Manager) Subscribers(channelName string) []ConnID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[channelName]
	if !ok {
		return nil
	}
	out := make([]ConnID, 0, len(ch.subscribers))
	for id := range ch.subscribers {
		out = append(out, id)
	}
	return out
}

func (m *Manager) getOrCreateLocked(channelName string) *channel {
	ch, ok := m.channels[channelName]
	if !ok {
		ch = newChannel()
		m.channels[channelName] = ch
	}
	return ch
}
