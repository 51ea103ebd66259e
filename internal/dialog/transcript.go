package dialog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// TranscriptConfig controls the per-chat conversation transcript.
type TranscriptConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// TranscriptEvent is one NDJSON line in a chat's transcript file.
type TranscriptEvent struct {
	Time      time.Time `json:"ts"`
	ChatID    int64     `json:"chat_id"`
	Direction string    `json:"direction"`
	Step      string    `json:"step"`
	Command   string    `json:"command,omitempty"`
	Text      string    `json:"text"`
}

// Transcript appends conversation events to one NDJSON file per chat.
// Logging never blocks a turn: events pass through a bounded queue to a
// single writer goroutine, and when the queue is full they are dropped.
type Transcript struct {
	cfg    TranscriptConfig
	logger *slog.Logger

	queue     chan TranscriptEvent
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

// NewTranscript creates a Transcript. A disabled config yields an inert
// instance whose Log and Close do nothing.
func NewTranscript(cfg TranscriptConfig, logger *slog.Logger) (*Transcript, error) {
	t := &Transcript{cfg: cfg, logger: logger}
	if !cfg.Enabled {
		return t, nil
	}

	if cfg.Dir == "" {
		return nil, errors.New("transcript enabled without a directory")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}

	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	t.queue = make(chan TranscriptEvent, size)
	t.quit = make(chan struct{})
	t.done = make(chan struct{})
	go t.run()

	return t, nil
}

// Log enqueues an event without blocking. Events that do not fit in the
// queue are counted and dropped.
func (t *Transcript) Log(ev TranscriptEvent) {
	if !t.cfg.Enabled {
		return
	}

	select {
	case t.queue <- ev:
	default:
		if n := t.dropped.Add(1); n == 1 || n%100 == 0 {
			t.logger.Warn("Transcript queue full, dropping events", "dropped_total", n)
		}
	}
}

// Close drains queued events and stops the writer. Events logged after
// Close are dropped.
func (t *Transcript) Close() error {
	if !t.cfg.Enabled {
		return nil
	}
	t.closeOnce.Do(func() { close(t.quit) })
	<-t.done
	return nil
}

func (t *Transcript) run() {
	defer close(t.done)

	for {
		select {
		case ev := <-t.queue:
			t.write(ev)
		case <-t.quit:
			for {
				select {
				case ev := <-t.queue:
					t.write(ev)
				default:
					return
				}
			}
		}
	}
}

func (t *Transcript) write(ev TranscriptEvent) {
	path := filepath.Join(t.cfg.Dir, strconv.FormatInt(ev.ChatID, 10)+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.logger.Warn("Failed to open transcript file", "chat_id", ev.ChatID, "error", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			t.logger.Warn("Failed to close transcript file", "chat_id", ev.ChatID, "error", err)
		}
	}()

	line, err := json.Marshal(ev)
	if err != nil {
		t.logger.Warn("Failed to encode transcript event", "chat_id", ev.ChatID, "error", err)
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		t.logger.Warn("Failed to write transcript event", "chat_id", ev.ChatID, "error", err)
	}
}
