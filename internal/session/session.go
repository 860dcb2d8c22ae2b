// ABOUTME: Session identity provider boundary for the conversation engine
// ABOUTME: Exposes the current authenticated user and a change-notification stream

package session

import (
	"context"
	"sync"
)

// User identifies the authenticated owner of a conversation.
type User struct {
	ID    string
	Email string
}

// Provider exposes the current authenticated user, or none, and a stream of
// identity changes. The credential system itself lives outside this module;
// the engine only consumes these notifications.
type Provider interface {
	// Current returns the active user, or false when signed out.
	Current() (User, bool)

	// Watch returns a channel of identity changes. A nil value means the
	// session ended (sign-out); a non-nil value is the newly active user.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) <-chan *User
}

// StaticProvider serves a fixed user. Used by the CLI, where identity is
// established once at startup, and by tests that drive sign-in/sign-out by
// hand via Emit.
type StaticProvider struct {
	mu       sync.Mutex
	user     *User
	watchers []chan *User
}

// NewStaticProvider creates a provider fixed to the given user.
// Pass nil for a signed-out provider.
func NewStaticProvider(user *User) *StaticProvider {
	return &StaticProvider{user: user}
}

// Current returns the active user, or false when signed out.
func (p *StaticProvider) Current() (User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.user == nil {
		return User{}, false
	}
	return *p.user, true
}

// Watch returns an identity change channel. The current identity is
// delivered immediately so a late subscriber still observes the session.
func (p *StaticProvider) Watch(ctx context.Context) <-chan *User {
	ch := make(chan *User, 4)

	p.mu.Lock()
	if p.user != nil {
		u := *p.user
		ch <- &u
	}
	p.watchers = append(p.watchers, ch)
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, w := range p.watchers {
			if w == ch {
				p.watchers = append(p.watchers[:i], p.watchers[i+1:]...)
				close(ch)
				break
			}
		}
	}()

	return ch
}

// Emit changes the active identity and notifies all watchers.
// Pass nil to sign out.
func (p *StaticProvider) Emit(user *User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.user = user
	for _, w := range p.watchers {
		var u *User
		if user != nil {
			copied := *user
			u = &copied
		}
		select {
		case w <- u:
		default:
			// Watcher is not keeping up; it will resync via Current.
		}
	}
}
