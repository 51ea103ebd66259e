package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/ipoteka-bot/internal/dialog"
)

// turnQueueSize bounds the backlog of one chat. A chat that floods
// faster than its turns are handled loses the overflow.
const turnQueueSize = 32

// sequencer delivers turns for one chat strictly in arrival order while
// letting independent chats proceed in parallel. Each active chat gets
// an inbox and a worker goroutine; workers retire after sitting idle.
type sequencer struct {
	ctx       context.Context
	handle    func(context.Context, dialog.Turn)
	idleAfter time.Duration

	mu      sync.Mutex
	inboxes map[int64]chan dialog.Turn
}

// newSequencer creates a sequencer whose workers live at most as long
// as ctx.
func newSequencer(ctx context.Context, handle func(context.Context, dialog.Turn)) *sequencer {
	return &sequencer{
		ctx:       ctx,
		handle:    handle,
		idleAfter: time.Minute,
		inboxes:   make(map[int64]chan dialog.Turn),
	}
}

// enqueue hands a turn to its chat's worker, starting one if the chat
// has none. It never blocks; a full inbox drops the turn.
func (s *sequencer) enqueue(turn dialog.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox, ok := s.inboxes[turn.ChatID]
	if !ok {
		inbox = make(chan dialog.Turn, turnQueueSize)
		s.inboxes[turn.ChatID] = inbox
		go s.drain(turn.ChatID, inbox)
	}

	select {
	case inbox <- turn:
	default:
		slog.Warn("Turn queue full, dropping turn", "chat_id", turn.ChatID)
	}
}

// drain feeds one chat's turns to the handler in order. The worker
// unregisters itself only while holding the lock and only with an empty
// inbox, so enqueue can never write to an abandoned inbox.
func (s *sequencer) drain(chatID int64, inbox chan dialog.Turn) {
	idle := time.NewTimer(s.idleAfter)
	defer idle.Stop()

	for {
		select {
		case turn := <-inbox:
			s.handle(s.ctx, turn)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(s.idleAfter)
		case <-idle.C:
			s.mu.Lock()
			if len(inbox) == 0 {
				delete(s.inboxes, chatID)
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
			idle.Reset(s.idleAfter)
		case <-s.ctx.Done():
			return
		}
	}
}

// active returns the number of chats with a live worker.
func (s *sequencer) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inboxes)
}
