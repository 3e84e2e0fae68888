package session

import (
	"context"
	"errors"
	"sync"

	"github.com/ariebrainware/nutritrack/model"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by operations on a closed Context.
var ErrClosed = errors.New("session context closed")

// State is an auth-state snapshot delivered on Changes.
type State struct {
	User    *User `json:"user"`
	Loading bool  `json:"loading"`
}

// ProfileMerger fills absent profile fields after a sign-in.
type ProfileMerger interface {
	EnsureProfile(ctx context.Context, uid, email string) (*model.User, error)
}

// Option configures a Context.
type Option func(*Context)

// WithProfileMerger merges the user profile on every sign-in and session restore.
func WithProfileMerger(m ProfileMerger) Option {
	return func(c *Context) { c.merger = m }
}

// WithClientMeta attaches client details used in security logs.
func WithClientMeta(meta ClientMeta) Option {
	return func(c *Context) { c.meta = meta }
}

// Context holds the signed-in user for one client. It starts loading, becomes
// ready after the first auth-state resolution and must be closed when the
// client goes away.
type Context struct {
	auth   Authenticator
	merger ProfileMerger
	meta   ClientMeta

	mu      sync.RWMutex
	user    *User
	token   string
	err     error
	closed  bool
	watches map[chan State]struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

// NewContext creates a Context in the loading state.
func NewContext(auth Authenticator, opts ...Option) *Context {
	c := &Context{
		auth:    auth,
		watches: make(map[chan State]struct{}),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start restores the session behind token in the background. An empty token
// resolves immediately to signed out.
func (c *Context) Start(ctx context.Context, token string) {
	if token == "" {
		c.settle(nil, "", nil)
		return
	}
	go func() {
		user, err := c.auth.Resolve(ctx, token)
		if err != nil {
			if CodeOf(err) != CodeInvalidSession {
				log.Error().Err(err).Msg("session restore failed")
			}
			c.settle(nil, "", err)
			return
		}
		c.mergeProfile(ctx, user)
		c.settle(user, token, nil)
	}()
}

func (c *Context) mergeProfile(ctx context.Context, user *User) {
	if c.merger == nil || user == nil {
		return
	}
	if _, err := c.merger.EnsureProfile(ctx, user.UID, user.Email); err != nil {
		log.Warn().Err(err).Str("uid", user.UID).Msg("profile merge failed")
	}
}

// settle records a new auth state, releases the init barrier and notifies watchers.
func (c *Context) settle(user *User, token string, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.user, c.token, c.err = user, token, err
	state := State{User: user}
	for ch := range c.watches {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
	c.mu.Unlock()
	c.readyOnce.Do(func() { close(c.ready) })
}

// Ready is closed once the first auth state is known.
func (c *Context) Ready() <-chan struct{} {
	return c.ready
}

// Wait blocks until the Context is ready or ctx ends.
func (c *Context) Wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loading reports whether the first auth state is still pending.
func (c *Context) Loading() bool {
	select {
	case <-c.ready:
		return false
	default:
		return true
	}
}

// CurrentUser returns the signed-in user, or nil.
func (c *Context) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Token returns the token of the current session, or "".
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Err returns the error of the last session restore, if any.
func (c *Context) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// State returns the current snapshot.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{User: c.user, Loading: c.Loading()}
}

// Login signs in and replaces the current user. On failure the prior state is kept.
func (c *Context) Login(ctx context.Context, email, password string) (*Issued, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	issued, err := c.auth.SignIn(ctx, email, password, c.meta)
	if err != nil {
		return nil, err
	}
	user := issued.User
	c.mergeProfile(ctx, &user)
	c.settle(&user, issued.Token, nil)
	return issued, nil
}

// Logout revokes the current session and clears the user.
func (c *Context) Logout(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	token := c.Token()
	if token != "" {
		if err := c.auth.SignOut(ctx, token); err != nil {
			return err
		}
	}
	c.settle(nil, "", nil)
	return nil
}

// Changes streams auth-state snapshots, newest wins. The channel is closed by
// cancel or Close.
func (c *Context) Changes() (<-chan State, func()) {
	ch := make(chan State, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.watches[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.watches[ch]; ok {
				delete(c.watches, ch)
				close(ch)
			}
		})
	}
}

func (c *Context) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close releases watchers and unblocks anyone waiting on Ready.
func (c *Context) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for ch := range c.watches {
		close(ch)
	}
	c.watches = nil
	c.mu.Unlock()
	c.readyOnce.Do(func() { close(c.ready) })
}
