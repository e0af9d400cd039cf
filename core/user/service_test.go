package user_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/user"
	dummydb "github.com/trezcool/entregas/storage/database/dummy"
	"github.com/trezcool/entregas/tests"
)

func setup(t *testing.T) (user.Service, user.Repository) {
	t.Helper()
	db, _ := dummydb.Open()
	repo := dummydb.NewUserRepository(db)
	validate, translator := testutil.NewValidator()
	return user.NewService(repo, validate, translator, testutil.NewConfig(t.TempDir())), repo
}

func TestService_Register(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{Identifier: " A001 ", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "A001", usr.Identifier)
	assert.Equal(t, user.RoleStudent, usr.Role, "role defaults to student")
	assert.NotContains(t, string(usr.PasswordHash), "secret")
	assert.False(t, usr.CreatedAt.IsZero())

	// same identifier twice: exactly one User remains
	_, err = svc.Register(ctx, user.NewUser{Identifier: "A001", Password: "other", Role: user.RoleAdmin})
	assert.ErrorIs(t, err, user.ErrAlreadyExists)
	stored, err := repo.GetUserByIdentifier(ctx, "A001")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, stored.ID)
	assert.NoError(t, stored.CheckPassword("secret"))

	admin, err := svc.Register(ctx, user.NewUser{Identifier: "root", Password: "pwd", Role: "Admin"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = svc.Register(ctx, user.NewUser{Identifier: "A002", Password: "pwd", Role: "guest"})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, map[string]string{"role": "invalid role"}, vErr.FieldMap())

	_, err = svc.Register(ctx, user.NewUser{Identifier: "A003", Password: strings.Repeat("x", 73)})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, map[string]string{"secret": "secret must be at most 72 bytes long"}, vErr.FieldMap())

	// 25 runes, 75 bytes
	_, err = svc.Register(ctx, user.NewUser{Identifier: "A003", Password: strings.Repeat("€", 25)})
	assert.True(t, core.IsValidationError(err))

	_, err = svc.Register(ctx, user.NewUser{Identifier: "A003", Password: strings.Repeat("x", 72)})
	assert.NoError(t, err)

	_, err = svc.Register(ctx, user.NewUser{Identifier: "   "})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, map[string]string{
		"identifier": "this field is required",
		"secret":     "this field is required",
	}, vErr.FieldMap())
}

func TestService_Register_concurrent(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Register(ctx, user.NewUser{Identifier: "A001", Password: "pwd"}); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, user.ErrAlreadyExists)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func TestService_Login(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, repo, "A001", "secret", user.RoleStudent)
	admin := testutil.CreateUser(t, repo, "admin", "123456", user.RoleAdmin)

	tests := []struct {
		name       string
		identifier string
		pwd        string
		want       user.Identity
		wantErr    error
	}{
		{name: "student", identifier: "A001", pwd: "secret", want: student.Identity()},
		{name: "admin", identifier: " admin", pwd: "123456", want: admin.Identity()},
		{name: "wrong secret", identifier: "A001", pwd: "Secret", wantErr: user.ErrInvalidCredentials},
		{name: "unknown identifier", identifier: "A404", pwd: "secret", wantErr: user.ErrInvalidCredentials},
		{name: "empty", wantErr: user.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Login(ctx, tt.identifier, tt.pwd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_BootstrapAdmin(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr, created, err := svc.BootstrapAdmin(ctx, "admin", "123456")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, usr.IsAdmin())

	again, created, err := svc.BootstrapAdmin(ctx, "admin", "changed")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, usr.ID, again.ID)

	stored, err := repo.GetUserByIdentifier(ctx, "admin")
	require.NoError(t, err)
	assert.NoError(t, stored.CheckPassword("123456"), "existing admin is left untouched")

	_, _, err = svc.BootstrapAdmin(ctx, "", "pwd")
	assert.True(t, core.IsValidationError(err))
}

func TestService_GetBy(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "A001", "secret", user.RoleStudent)

	got, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.Identifier, got.Identifier)

	got, err = svc.GetByIdentifier(ctx, "A001 ")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, user.ErrNotFound)
}
