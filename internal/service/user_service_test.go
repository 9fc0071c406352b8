package service

import (
	"context"
	"errors"
	"testing"

	"governance/internal/model"
	"governance/internal/notification"
	"governance/internal/repository/memory"
	"governance/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecipientCache struct {
	entries map[uuid.UUID]notification.Recipient
	getErr  error
	sets    int
}

func (c *fakeRecipientCache) Get(_ context.Context, id uuid.UUID) (notification.Recipient, bool, error) {
	if c.getErr != nil {
		return notification.Recipient{}, false, c.getErr
	}
	r, ok := c.entries[id]
	return r, ok, nil
}

func (c *fakeRecipientCache) Set(_ context.Context, r notification.Recipient) error {
	c.sets++
	c.entries[r.UserID] = r
	return nil
}

var testSecret = []byte("test-secret")

func newUserService(t *testing.T, cache RecipientCache) UserService {
	t.Helper()
	return NewUserService(memory.NewUserRepository(memory.NewStore()), cache, testSecret, nil)
}

func createRita(t *testing.T, svc UserService) *UserResponse {
	t.Helper()
	u, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "rita",
		FullName: "Rita Reviewer",
		Email:    "rita@example.com",
		Password: "correct-horse",
		Role:     model.RoleReviewer,
	})
	require.NoError(t, err)
	return u
}

func TestUserService_LoginIssuesSubjectToken(t *testing.T) {
	svc := newUserService(t, nil)
	rita := createRita(t, svc)

	tok, err := svc.Login(context.Background(), LoginUserRequest{Username: "rita", Password: "correct-horse"})
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (any, error) { return testSecret, nil })
	require.NoError(t, err)
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, rita.ID.String(), sub)
	assert.Equal(t, model.RoleReviewer, claims["role"])

	_, err = svc.Login(context.Background(), LoginUserRequest{Username: "rita", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), LoginUserRequest{Username: "nobody", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_CreateUserRules(t *testing.T) {
	svc := newUserService(t, nil)
	createRita(t, svc)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "rita", Email: "other@example.com", Password: "long-enough", Role: model.RoleStaff,
	})
	assert.True(t, apperror.Is(err, apperror.CodeConflict))

	_, err = svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "bob", Email: "not-an-email", Password: "short", Role: "owner",
	})
	appErr, ok := apperror.From(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "password")
	assert.Contains(t, appErr.Fields, "role")
}

func TestUserService_ResolveReadsThroughCache(t *testing.T) {
	cache := &fakeRecipientCache{entries: map[uuid.UUID]notification.Recipient{}}
	svc := newUserService(t, cache)
	rita := createRita(t, svc)
	ctx := context.Background()

	r, err := svc.Resolve(ctx, rita.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.Recipient{UserID: rita.ID, Email: "rita@example.com", Name: "Rita Reviewer"}, r)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.Resolve(ctx, rita.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "second lookup is a cache hit")

	cache.getErr = errors.New("redis down")
	r, err = svc.Resolve(ctx, rita.ID)
	require.NoError(t, err, "cache failures fall back to the store")
	assert.Equal(t, "rita@example.com", r.Email)

	_, err = svc.Resolve(ctx, uuid.New())
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestUserService_ListUsersHidesPasswords(t *testing.T) {
	svc := newUserService(t, nil)
	createRita(t, svc)

	users, total, err := svc.ListUsers(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "rita", users[0].Username)
}
