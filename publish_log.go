package match

import (
	"encoding/json"
	"io"
	"sync"
)

// PublishLog is an interface for publishing order book logs.
//
// IMPORTANT: Implementations must either:
//  1. Process logs synchronously before returning, OR
//  2. Clone the BookLog data before returning
//
// The caller recycles BookLog objects to a sync.Pool after Publish returns,
// so any asynchronous processing must work with cloned data.
type PublishLog interface {
	Publish(...*BookLog)
}

// MemoryPublishLog stores logs in memory, useful for testing.
type MemoryPublishLog struct {
	mu   sync.RWMutex
	logs []*BookLog
}

// NewMemoryPublishLog creates a new MemoryPublishLog.
func NewMemoryPublishLog() *MemoryPublishLog {
	return &MemoryPublishLog{
		logs: make([]*BookLog, 0),
	}
}

// Publish appends copies of logs to the in-memory slice.
func (m *MemoryPublishLog) Publish(logs ...*BookLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, log := range logs {
		cpy := new(BookLog)
		*cpy = *log
		m.logs = append(m.logs, cpy)
	}
}

// Count returns the number of logs stored.
func (m *MemoryPublishLog) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs)
}

// Get returns the log at the specified index.
func (m *MemoryPublishLog) Get(index int) *BookLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.logs[index]
}

// Logs returns a copy of all logs stored.
func (m *MemoryPublishLog) Logs() []*BookLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := make([]*BookLog, len(m.logs))
	copy(logs, m.logs)
	return logs
}

// DiscardPublishLog discards all logs, useful for benchmarking.
type DiscardPublishLog struct{}

// NewDiscardPublishLog creates a new DiscardPublishLog.
func NewDiscardPublishLog() *DiscardPublishLog {
	return &DiscardPublishLog{}
}

// Publish drops logs.
func (p *DiscardPublishLog) Publish(...*BookLog) {}

// WriterPublishLog writes every log as one JSON line.
// Write errors are logged and otherwise dropped; the book never blocks on its audit trail.
type WriterPublishLog struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterPublishLog creates a WriterPublishLog on w.
func NewWriterPublishLog(w io.Writer) *WriterPublishLog {
	return &WriterPublishLog{enc: json.NewEncoder(w)}
}

// Publish encodes logs in order.
func (p *WriterPublishLog) Publish(logs ...*BookLog) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, log := range logs {
		if err := p.enc.Encode(log); err != nil {
			logger.Warn("audit log write failed", "error", err, "seq_id", log.SequenceID)
		}
	}
}

type multiPublishLog []PublishLog

// MultiPublishLog fans logs out to every publisher in order.
func MultiPublishLog(publishers ...PublishLog) PublishLog {
	return multiPublishLog(publishers)
}

func (m multiPublishLog) Publish(logs ...*BookLog) {
	for _, p := range m {
		p.Publish(logs...)
	}
}
