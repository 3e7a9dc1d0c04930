package identity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

// Provider is an email/password identity provider backed by an
// ports.AuthService. The signed-in session survives restarts as an access
// token stored in a file; an invalid or expired token is treated as signed
// out.
type Provider struct {
	auth        ports.AuthService
	sessionPath string
	logger      *slog.Logger

	mu          sync.Mutex
	current     *domain.Identity
	subscribers map[int]func(*domain.Identity)
	nextID      int
}

func NewProvider(auth ports.AuthService, sessionPath string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		auth:        auth,
		sessionPath: sessionPath,
		logger:      logger,
		subscribers: make(map[int]func(*domain.Identity)),
	}
	p.current = p.restore()
	return p
}

func (p *Provider) restore() *domain.Identity {
	if p.sessionPath == "" {
		return nil
	}
	raw, err := os.ReadFile(p.sessionPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("session file unreadable", "path", p.sessionPath, "error", err)
		}
		return nil
	}
	identity, err := p.auth.ParseAccessToken(strings.TrimSpace(string(raw)))
	if err != nil {
		p.logger.Info("stored session rejected", "path", p.sessionPath, "error", err)
		return nil
	}
	return identity
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.Identity, error) {
	identity, token, err := p.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return identity, p.establish(identity, token)
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	identity, token, err := p.auth.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return identity, p.establish(identity, token)
}

func (p *Provider) SignOut(_ context.Context) error {
	if p.sessionPath != "" {
		if err := os.Remove(p.sessionPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return domain.NewAuthError("Unable to sign out: "+err.Error(), err)
		}
	}
	p.set(nil)
	return nil
}

func (p *Provider) Current() *domain.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers fn and immediately calls it with the current identity.
// fn is then called after every sign-in and sign-out until the returned
// function is called.
func (p *Provider) Subscribe(fn func(*domain.Identity)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

func (p *Provider) establish(identity *domain.Identity, token string) error {
	if p.sessionPath != "" {
		if err := os.MkdirAll(filepath.Dir(p.sessionPath), 0o700); err != nil {
			return fmt.Errorf("create session directory: %w", err)
		}
		if err := os.WriteFile(p.sessionPath, []byte(token+"\n"), 0o600); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
	}
	p.set(identity)
	return nil
}

func (p *Provider) set(identity *domain.Identity) {
	p.mu.Lock()
	p.current = identity
	subs := make([]func(*domain.Identity), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(identity)
	}
}

var _ ports.IdentityProvider = (*Provider)(nil)
