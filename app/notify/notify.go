// Package notify collects the transient notices the storefront shows the
// user. The UI drains the queue and renders each notice once.
package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(level Level, message string)
}

const defaultCapacity = 50

// Queue is a bounded FIFO of notices. When full, the oldest notice is
// dropped.
type Queue struct {
	mu      sync.Mutex
	notices []Notice
	max     int
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewQueue(log logrus.FieldLogger, capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{
		max: capacity,
		log: log,
		now: time.Now,
	}
}

func (q *Queue) Notify(level Level, message string) {
	entry := q.log.WithField("notice", string(level))
	switch level {
	case LevelError:
		entry.Warn(message)
	default:
		entry.Info(message)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.notices = append(q.notices, Notice{Level: level, Message: message, At: q.now()})
	if over := len(q.notices) - q.max; over > 0 {
		q.notices = q.notices[over:]
	}
}

// Drain returns the pending notices oldest first and empties the queue.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.notices
	q.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notices)
}
