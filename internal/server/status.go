package server

import (
	"sort"
	"sync"
	"time"

	"github.com/starford/markdownfeeds/internal/generator"
)

// Build states reported by Status.
const (
	StateBuilding = "building"
	StateBuilt    = "built"
	StateFailed   = "failed"
)

// FeedStatus is the outcome of the most recent run of one feed.
type FeedStatus struct {
	Name      string    `json:"name"`
	State     string    `json:"state"`
	Pages     int       `json:"pages"`
	Items     int       `json:"items"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status records build progress per feed. It is a generator.Observer.
type Status struct {
	mu    sync.RWMutex
	feeds map[string]*FeedStatus
	now   func() time.Time
}

var _ generator.Observer = (*Status)(nil)

// NewStatus returns an empty status tracker.
func NewStatus() *Status {
	return &Status{feeds: make(map[string]*FeedStatus), now: time.Now}
}

func (s *Status) Observe(e generator.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs, ok := s.feeds[e.Generator]
	if !ok {
		fs = &FeedStatus{Name: e.Generator}
		s.feeds[e.Generator] = fs
	}
	switch e.Kind {
	case generator.EventDiscovered:
		fs.State = StateBuilding
		fs.Error = ""
	case generator.EventValidated:
		fs.Items = e.Count
	case generator.EventCompleted:
		fs.State = StateBuilt
		fs.Pages = e.Count
	case generator.EventFailed:
		fs.State = StateFailed
		if e.Err != nil {
			fs.Error = e.Err.Error()
		}
	default:
		return
	}
	fs.UpdatedAt = s.now()
}

// Snapshot returns the status of every feed ordered by name.
func (s *Status) Snapshot() []FeedStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FeedStatus, 0, len(s.feeds))
	for _, fs := range s.feeds {
		out = append(out, *fs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
