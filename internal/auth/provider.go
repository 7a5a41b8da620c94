package auth

import (
	"errors"
	"fmt"
	"sync"
)

// Session is the signed-in identity used to reach a rentbook server.
type Session struct {
	ServerURL string `json:"server_url" yaml:"server_url"`
	APIKey    string `json:"api_key" yaml:"api_key"`
	Owner     string `json:"owner,omitempty" yaml:"owner,omitempty"`
}

// SaveFunc persists the session. A nil session means signed out.
type SaveFunc func(*Session) error

// Provider holds the current session and notifies subscribers of changes.
type Provider struct {
	mu      sync.Mutex
	session *Session
	save    SaveFunc
	subs    map[int]chan *Session
	nextSub int
}

// NewProvider creates a provider starting from initial, which may be nil.
func NewProvider(initial *Session, save SaveFunc) *Provider {
	if save == nil {
		save = func(*Session) error { return nil }
	}
	return &Provider{
		session: copySession(initial),
		save:    save,
		subs:    make(map[int]chan *Session),
	}
}

// Session returns the current session, or nil when signed out.
func (p *Provider) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copySession(p.session)
}

// SignIn persists s as the current session.
func (p *Provider) SignIn(s Session) error {
	if s.ServerURL == "" || s.APIKey == "" {
		return errors.New("server URL and API key are required")
	}
	return p.set(&s)
}

// SignOut clears the current session. Signing out twice is not an error.
func (p *Provider) SignOut() error {
	return p.set(nil)
}

// Subscribe returns a channel that receives the session after every change
// and a function that stops the subscription. Only the latest change is kept
// for a slow reader.
func (p *Provider) Subscribe() (<-chan *Session, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	ch := make(chan *Session, 1)
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			close(ch)
		})
	}
}

func (p *Provider) set(s *Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.save(s); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	p.session = copySession(s)

	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- copySession(s)
	}
	return nil
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
