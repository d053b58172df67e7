package interview

import (
	"errors"
	"sync"
)

var ErrAlreadyLive = errors.New("interview already has a live controller")

// Registry tracks live controllers so HTTP handlers can reach a session that
// is driven over a websocket.
type Registry struct {
	mu   sync.Mutex
	live map[string]*Controller
}

func NewRegistry() *Registry {
	return &Registry{live: map[string]*Controller{}}
}

func (r *Registry) Register(id string, c *Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.live[id]; ok && !cur.Ended() {
		return ErrAlreadyLive
	}
	r.live[id] = c
	return nil
}

func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.live[id]
	return c, ok
}

// Remove drops id only if it still maps to c.
func (r *Registry) Remove(id string, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.live[id]; ok && cur == c {
		delete(r.live, id)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
