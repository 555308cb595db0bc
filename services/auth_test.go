package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	apperrors "coursehub/errors"
	"coursehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct {
	users  map[int]*models.User
	nextID int
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[int]*models.User{}, nextID: 1}
}

func (m *mockUserStore) Create(_ context.Context, u *models.User) (int, error) {
	id := m.nextID
	m.nextID++
	copied := *u
	copied.ID = id
	m.users[id] = &copied
	return id, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.UserEmail == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserStore) GetByID(_ context.Context, id int) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserStore) GetByGoogleIDOrEmail(_ context.Context, googleID, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			copied := *u
			return &copied, nil
		}
	}
	return m.GetByEmail(context.Background(), email)
}

func (m *mockUserStore) ExistsByNameOrEmail(_ context.Context, name, email string) (bool, error) {
	for _, u := range m.users {
		if u.UserName == name || u.UserEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func newTestAuthService(store *mockUserStore) *AuthService {
	return &AuthService{Users: store}
}

func TestRegister(t *testing.T) {
	store := newMockUserStore()
	svc := newTestAuthService(store)

	view, err := svc.Register(context.Background(), RegisterRequest{
		UserName:  "meera",
		UserEmail: "Meera@Example.com",
		Password:  "s3cretpw",
	})
	require.NoError(t, err)

	assert.Equal(t, "meera", view.UserName)
	assert.Equal(t, "meera@example.com", view.UserEmail, "email is normalized")
	assert.Equal(t, models.RoleStudent, view.Role, "role defaults to student")

	stored := store.users[view.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cretpw", stored.PasswordHash, "password is hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cretpw")))
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(newMockUserStore())

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"empty name", RegisterRequest{UserEmail: "a@b.co", Password: "password"}},
		{"bad email", RegisterRequest{UserName: "a", UserEmail: "not-an-email", Password: "password"}},
		{"short password", RegisterRequest{UserName: "a", UserEmail: "a@b.co", Password: "pw"}},
		{"bad role", RegisterRequest{UserName: "a", UserEmail: "a@b.co", Password: "password", Role: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newTestAuthService(newMockUserStore())
	req := RegisterRequest{UserName: "meera", UserEmail: "meera@example.com", Password: "s3cretpw"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))
}

func TestLogin(t *testing.T) {
	withTestJWTSecret(t)
	store := newMockUserStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(context.Background(), RegisterRequest{
		UserName: "meera", UserEmail: "meera@example.com", Password: "s3cretpw",
	})
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), "meera@example.com", "s3cretpw")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, "meera", session.User.UserName)

	claims, err := ParseToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
}

func TestLoginBadCredentials(t *testing.T) {
	withTestJWTSecret(t)
	svc := newTestAuthService(newMockUserStore())

	_, err := svc.Register(context.Background(), RegisterRequest{
		UserName: "meera", UserEmail: "meera@example.com", Password: "s3cretpw",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "meera@example.com", "wrongpw")
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))

	_, err = svc.Login(context.Background(), "ghost@example.com", "s3cretpw")
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))
}

func TestLoginGoogleOnlyAccount(t *testing.T) {
	store := newMockUserStore()
	store.users[1] = &models.User{
		ID: 1, UserName: "g", UserEmail: "g@example.com",
		AuthProvider: models.ProviderGoogle, GoogleID: "sub-1",
	}
	svc := newTestAuthService(store)

	_, err := svc.Login(context.Background(), "g@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, apperrors.Unauthorized, apperrors.KindOf(err))
	assert.True(t, strings.Contains(apperrors.MessageOf(err), "google"))
}

func TestCheckUserExists(t *testing.T) {
	store := newMockUserStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(context.Background(), RegisterRequest{
		UserName: "meera", UserEmail: "meera@example.com", Password: "s3cretpw",
	})
	require.NoError(t, err)

	exists, provider, err := svc.CheckUserExists(context.Background(), "meera@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, models.ProviderLocal, provider)

	exists, provider, err = svc.CheckUserExists(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, provider)

	_, _, err = svc.CheckUserExists(context.Background(), "bad-email")
	require.Error(t, err)
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
}
