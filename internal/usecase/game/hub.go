package game

import (
	"sync"

	"game_arena/internal/domain/game"
)

const watcherBuffer = 8

// hub fans session updates out to live connections of this process.
type hub struct {
	mu       sync.Mutex
	watchers map[string]map[chan *game.Session]struct{}
}

func newHub() *hub {
	return &hub{watchers: make(map[string]map[chan *game.Session]struct{})}
}

func (h *hub) subscribe(sessionID string) (<-chan *game.Session, func()) {
	ch := make(chan *game.Session, watcherBuffer)
	h.mu.Lock()
	if h.watchers[sessionID] == nil {
		h.watchers[sessionID] = make(map[chan *game.Session]struct{})
	}
	h.watchers[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers[sessionID], ch)
			if len(h.watchers[sessionID]) == 0 {
				delete(h.watchers, sessionID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// publish never blocks: a watcher whose buffer is full skips this update and
// catches up with the next one.
func (h *hub) publish(s *game.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.watchers[s.ID] {
		select {
		case ch <- s:
		default:
		}
	}
}
