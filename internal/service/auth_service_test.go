package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studynotes/internal/model"
	"studynotes/internal/repository"
)

// memUserRepo keeps users in a map keyed by email, running the same
// BeforeSave hook the database layer would
type memUserRepo struct {
	nextID uint
	users  map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	if _, ok := r.users[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// memTokenCache is an in-memory denylist, TTLs ignored
type memTokenCache struct {
	denied map[string]bool
}

func newMemTokenCache() *memTokenCache {
	return &memTokenCache{denied: make(map[string]bool)}
}

func (c *memTokenCache) Denylist(ctx context.Context, token string, ttl time.Duration) error {
	c.denied[token] = true
	return nil
}

func (c *memTokenCache) IsDenylisted(ctx context.Context, token string) (bool, error) {
	return c.denied[token], nil
}

func newTestAuthService() (*AuthService, *memUserRepo, *memTokenCache) {
	repo := newMemUserRepo()
	tokens := newMemTokenCache()
	return NewAuthService(repo, tokens, "test-secret", time.Hour), repo, tokens
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()

	user, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.NotEqual(t, "hunter22", user.Password)
	require.True(t, user.CheckPassword("hunter22"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Other", "ada@example.com", "different")
	require.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestLoginAndValidate(t *testing.T) {
	svc, _, _ := newTestAuthService()

	registered, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, registered.ID, resp.User.ID)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, claims.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// An unknown email produces the same error as a wrong password
	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutDenylistsToken(t *testing.T) {
	svc, _, tokens := newTestAuthService()

	_, err := svc.Register(context.Background(), "Ada", "ada@example.com", "hunter22")
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), resp.Token))
	require.True(t, tokens.denied[resp.Token])

	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbageAndForeignSignature(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Token signed with a different secret
	other := NewAuthService(newMemUserRepo(), newMemTokenCache(), "other-secret", time.Hour)
	_, err = other.Register(context.Background(), "Eve", "eve@example.com", "pw123456")
	require.NoError(t, err)
	resp, err := other.Login(context.Background(), "eve@example.com", "pw123456")
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), resp.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
