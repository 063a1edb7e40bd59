// Package respond pumps inbound message events through the matcher and
// bridges replies back into the Bubble Tea runtime. It stands between the
// message-event layer (console or chat gateway) and the matching core.
package respond

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tagbot/internal/matcher"
)

// matchTimeout is the maximum time allowed for a single match operation.
const matchTimeout = 10 * time.Second

// MessageEvent is a single inbound chat message. ServerID and AuthorID are
// opaque identifiers supplied by the calling layer.
type MessageEvent struct {
	ServerID int64
	AuthorID int64
	Text     string
}

// ReplyMsg is a tea.Msg sent when an inbound message produced a response
// or the match attempt failed.
type ReplyMsg struct {
	ServerID int64
	Content  string
	Err      error
}

// Dispatcher consumes message events and emits matcher replies.
type Dispatcher struct {
	matcher *matcher.Matcher
	eventCh chan MessageEvent
	replyCh chan ReplyMsg
	stopCh  chan struct{}

	mu      gosync.Mutex
	running bool
}

// New creates a Dispatcher over the given matcher.
func New(m *matcher.Matcher) *Dispatcher {
	return &Dispatcher{
		matcher: m,
		eventCh: make(chan MessageEvent, 16),
		replyCh: make(chan ReplyMsg, 16),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the dispatch loop and returns a subscription command that
// waits on the reply channel and delivers ReplyMsg messages to the Bubble
// Tea runtime.
func (d *Dispatcher) Start() tea.Cmd {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = true
	d.mu.Unlock()

	go d.run()

	return d.waitForReply()
}

// Stop halts the dispatch loop.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	close(d.stopCh)
	d.running = false
}

// Dispatch enqueues an inbound message event without blocking. Events are
// dropped if the queue is full; a slow store must not stall the UI loop.
func (d *Dispatcher) Dispatch(ev MessageEvent) {
	select {
	case d.eventCh <- ev:
	default:
	}
}

// run consumes events until stopped.
func (d *Dispatcher) run() {
	for {
		select {
		case <-d.stopCh:
			return
		case ev := <-d.eventCh:
			d.handle(ev)
		}
	}
}

// handle runs a single match and emits a reply when one is produced.
// Messages that match nothing produce no reply at all, matching how a
// chat responder stays silent.
func (d *Dispatcher) handle(ev MessageEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), matchTimeout)
	defer cancel()

	content, ok, err := d.matcher.FindResponse(ctx, ev.ServerID, ev.Text)
	if err != nil {
		d.sendReply(ReplyMsg{ServerID: ev.ServerID, Err: err})
		return
	}
	if !ok {
		return
	}

	d.sendReply(ReplyMsg{ServerID: ev.ServerID, Content: content})
}

// sendReply sends a ReplyMsg on the reply channel without blocking.
func (d *Dispatcher) sendReply(msg ReplyMsg) {
	select {
	case d.replyCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the dispatcher.
	}
}

// waitForReply returns a tea.Cmd that waits for the next reply.
func (d *Dispatcher) waitForReply() tea.Cmd {
	return func() tea.Msg {
		reply, ok := <-d.replyCh
		if !ok {
			return nil
		}
		return reply
	}
}

// WaitForNextReply returns a tea.Cmd that waits for the next matcher
// reply. Call this after processing a ReplyMsg to keep listening.
func (d *Dispatcher) WaitForNextReply() tea.Cmd {
	return d.waitForReply()
}
