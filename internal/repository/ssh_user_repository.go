package repository

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	gossh "golang.org/x/crypto/ssh"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SSHUser struct {
	ID          int64
	Username    string
	PublicKey   string
	KeyType     string
	Fingerprint string
	LastLoginAt *time.Time
}

// SSHUserRepository holds the users allowed into the terminal desk. Users come
// from an authorized_keys file whose comment field names the user.
type SSHUserRepository struct {
	tracer trace.Tracer
	now    func() time.Time

	mu            sync.RWMutex
	byFingerprint map[string]*SSHUser
}

func NewSSHUserRepository(tracer trace.Tracer) *SSHUserRepository {
	return &SSHUserRepository{
		tracer:        tracer,
		now:           func() time.Time { return time.Now().UTC() },
		byFingerprint: make(map[string]*SSHUser),
	}
}

// LoadAuthorizedKeysFile replaces the user set with the keys in path.
func (r *SSHUserRepository) LoadAuthorizedKeysFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read authorized keys: %w", err)
	}
	return r.LoadAuthorizedKeys(ctx, data)
}

// LoadAuthorizedKeys parses authorized_keys content. A key without a comment
// gets a username derived from its fingerprint.
func (r *SSHUserRepository) LoadAuthorizedKeys(ctx context.Context, data []byte) (int, error) {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.load")
	defer span.End()

	users := make(map[string]*SSHUser)
	var id int64
	rest := data
	for len(bytes.TrimSpace(rest)) > 0 {
		key, comment, _, next, err := gossh.ParseAuthorizedKey(rest)
		if err != nil {
			span.RecordError(err)
			return 0, fmt.Errorf("parse authorized keys (entry %d): %w", id+1, err)
		}
		rest = next

		fp := gossh.FingerprintSHA256(key)
		if _, dup := users[fp]; dup {
			continue
		}
		id++
		username := strings.TrimSpace(comment)
		if username == "" {
			username = "key-" + strings.TrimPrefix(fp, "SHA256:")[:8]
		}
		users[fp] = &SSHUser{
			ID:          id,
			Username:    username,
			PublicKey:   strings.TrimSpace(string(gossh.MarshalAuthorizedKey(key))),
			KeyType:     key.Type(),
			Fingerprint: fp,
		}
	}

	r.mu.Lock()
	r.byFingerprint = users
	r.mu.Unlock()

	span.SetAttributes(attribute.Int("users", len(users)))
	return len(users), nil
}

func (r *SSHUserRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*SSHUser, error) {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.find-by-fingerprint")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byFingerprint[fingerprint]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// Authenticate returns the user owning key, or nil.
func (r *SSHUserRepository) Authenticate(ctx context.Context, key gossh.PublicKey) (*SSHUser, error) {
	return r.FindByFingerprint(ctx, gossh.FingerprintSHA256(key))
}

func (r *SSHUserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.update-last-login")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byFingerprint {
		if u.ID == userID {
			at := r.now()
			u.LastLoginAt = &at
			return nil
		}
	}
	return fmt.Errorf("ssh user %d not found", userID)
}

func (r *SSHUserRepository) ListActive(ctx context.Context) ([]SSHUser, error) {
	_, span := r.tracer.Start(ctx, "ssh-user-repo.list-active")
	defer span.End()

	r.mu.RLock()
	users := make([]SSHUser, 0, len(r.byFingerprint))
	for _, u := range r.byFingerprint {
		users = append(users, *u)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}
