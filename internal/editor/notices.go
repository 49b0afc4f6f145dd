package editor

import "fmt"

const noticeCapacity = 32

// Level grades a notice.
type Level uint8

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one transient user-facing message.
type Notice struct {
	Seq     int
	Level   Level
	Message string
}

func (n Notice) String() string {
	return fmt.Sprintf("[%s] %s", n.Level, n.Message)
}

// Notices is a ring buffer of the most recent notices.
type Notices struct {
	entries []Notice
	head    int
	count   int
	seq     int
}

// NewNotices creates an empty buffer.
func NewNotices() *Notices {
	return &Notices{entries: make([]Notice, noticeCapacity)}
}

// Add appends a notice, overwriting the oldest when full.
func (n *Notices) Add(level Level, msg string) {
	n.seq++
	n.entries[n.head] = Notice{Seq: n.seq, Level: level, Message: msg}
	n.head = (n.head + 1) % noticeCapacity
	if n.count < noticeCapacity {
		n.count++
	}
}

// Recent returns entries oldest first.
func (n *Notices) Recent() []Notice {
	result := make([]Notice, n.count)
	for i := 0; i < n.count; i++ {
		idx := (n.head - n.count + i + noticeCapacity) % noticeCapacity
		result[i] = n.entries[idx]
	}
	return result
}

// Last returns the newest notice.
func (n *Notices) Last() (Notice, bool) {
	if n.count == 0 {
		return Notice{}, false
	}
	return n.entries[(n.head-1+noticeCapacity)%noticeCapacity], true
}

// Since returns notices with a sequence number greater than seq.
func (n *Notices) Since(seq int) []Notice {
	var out []Notice
	for _, e := range n.Recent() {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// Len returns how many notices are held.
func (n *Notices) Len() int { return n.count }
