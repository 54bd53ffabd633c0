package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderbook/apiserver/config"
	"github.com/wanderbook/apiserver/internal/services"
	"github.com/wanderbook/apiserver/internal/store"
	"github.com/wanderbook/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// mockUserRepo is a test double for services.UserRepository. Set only
// the method fields your test needs.
type mockUserRepo struct {
	getByID    func(ctx context.Context, id string) (types.User, error)
	getByEmail func(ctx context.Context, email string) (types.User, error)
	create     func(ctx context.Context, user types.User) (types.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	return m.create(ctx, user)
}

var _ services.UserRepository = (*mockUserRepo)(nil)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		DefaultRole:          types.RoleUser,
		PasswordMinLength:    8,
		PasswordRequireDigit: true,
		PasswordRequireLower: true,
		PasswordRequireUpper: true,
	}
}

func emptyRepo() *mockUserRepo {
	return &mockUserRepo{
		getByEmail: func(ctx context.Context, email string) (types.User, error) {
			return types.User{}, store.ErrNotFound
		},
		create: func(ctx context.Context, user types.User) (types.User, error) {
			return user, nil
		},
	}
}

func TestRegister_createsUserWithDefaultRole(t *testing.T) {
	var created types.User
	repo := emptyRepo()
	repo.create = func(ctx context.Context, user types.User) (types.User, error) {
		created = user
		return user, nil
	}
	svc := services.NewUserService(repo, testAuthConfig())

	user, err := svc.Register(context.Background(), "ada@example.com", "Sup3rsecret", "Ada", "Lovelace")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, []string{types.RoleUser}, created.Roles)
	assert.NotEqual(t, "Sup3rsecret", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("Sup3rsecret")))
}

func TestRegister_rejectsMissingFields(t *testing.T) {
	svc := services.NewUserService(emptyRepo(), testAuthConfig())

	_, err := svc.Register(context.Background(), "  ", "Sup3rsecret", "Ada", "Lovelace")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Register(context.Background(), "ada@example.com", "Sup3rsecret", "", "Lovelace")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestRegister_enforcesPasswordPolicy(t *testing.T) {
	svc := services.NewUserService(emptyRepo(), testAuthConfig())

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1"},
		{"no digit", "Abcdefgh"},
		{"no lowercase", "ABCDEFG1"},
		{"no uppercase", "abcdefg1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), "ada@example.com", tt.password, "Ada", "Lovelace")
			assert.ErrorIs(t, err, services.ErrWeakPassword)
		})
	}
}

func TestRegister_rejectsTakenEmail(t *testing.T) {
	repo := emptyRepo()
	repo.getByEmail = func(ctx context.Context, email string) (types.User, error) {
		return types.User{ID: "existing", Email: email}, nil
	}
	svc := services.NewUserService(repo, testAuthConfig())

	_, err := svc.Register(context.Background(), "ada@example.com", "Sup3rsecret", "Ada", "Lovelace")
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestRegister_mapsDuplicateFromStore(t *testing.T) {
	// The pre-check can race with a concurrent insert; the unique
	// constraint is the backstop.
	repo := emptyRepo()
	repo.create = func(ctx context.Context, user types.User) (types.User, error) {
		return types.User{}, store.ErrDuplicate
	}
	svc := services.NewUserService(repo, testAuthConfig())

	_, err := svc.Register(context.Background(), "ada@example.com", "Sup3rsecret", "Ada", "Lovelace")
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestLogin_succeedsWithCorrectPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := emptyRepo()
	repo.getByEmail = func(ctx context.Context, email string) (types.User, error) {
		return types.User{ID: "u1", Email: email, PasswordHash: string(hash)}, nil
	}
	svc := services.NewUserService(repo, testAuthConfig())

	user, err := svc.Login(context.Background(), "ada@example.com", "Sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestLogin_sameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)

	known := emptyRepo()
	known.getByEmail = func(ctx context.Context, email string) (types.User, error) {
		return types.User{ID: "u1", Email: email, PasswordHash: string(hash)}, nil
	}
	unknown := emptyRepo()

	knownSvc := services.NewUserService(known, testAuthConfig())
	unknownSvc := services.NewUserService(unknown, testAuthConfig())

	_, wrongPass := knownSvc.Login(context.Background(), "ada@example.com", "not-the-password")
	_, noAccount := unknownSvc.Login(context.Background(), "nobody@example.com", "whatever")

	assert.ErrorIs(t, wrongPass, services.ErrInvalidCredentials)
	assert.ErrorIs(t, noAccount, services.ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), noAccount.Error())
}
