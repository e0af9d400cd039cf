package user

import (
	"context"
	"errors"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/entregas/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("a user with this identifier already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		// CreateUser inserts usr. Returns ErrAlreadyExists when the identifier is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByIdentifier(ctx context.Context, identifier string) (User, error)
	}

	Service interface {
		Register(ctx context.Context, nu NewUser) (User, error)
		Login(ctx context.Context, identifier, pwd string) (Identity, error)
		BootstrapAdmin(ctx context.Context, identifier, pwd string) (User, bool, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByIdentifier(ctx context.Context, identifier string) (User, error)
	}

	service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
		bcryptCost int
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator, conf *core.Config) Service {
	return &service{
		repo:       repo,
		validate:   validate,
		translator: translator,
		bcryptCost: conf.Auth.BcryptCost,
	}
}

func (svc *service) create(ctx context.Context, identifier, pwd, role string) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Identifier: identifier,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(pwd, svc.bcryptCost); err != nil {
		return User{}, pkgerrors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Register creates a new User. Fails with ErrAlreadyExists if the identifier is taken.
func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, core.TranslateValidationErrors(err, svc.translator)
	}

	if _, err := svc.repo.GetUserByIdentifier(ctx, nu.Identifier); err == nil {
		return User{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, pkgerrors.Wrap(err, "finding user by identifier")
	}

	usr, err := svc.create(ctx, nu.Identifier, nu.Password, nu.Role)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) { // lost a race with a concurrent registration
			return User{}, ErrAlreadyExists
		}
		return User{}, pkgerrors.Wrap(err, "creating user")
	}
	return usr, nil
}

// Login checks the credentials and returns the user's Identity.
// Unknown identifiers and wrong passwords both fail with ErrInvalidCredentials.
func (svc *service) Login(ctx context.Context, identifier, pwd string) (Identity, error) {
	usr, err := svc.repo.GetUserByIdentifier(ctx, core.CleanString(identifier))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, pkgerrors.Wrap(err, "finding user by identifier")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return usr.Identity(), nil
}

// BootstrapAdmin creates an admin User unless one with the same identifier already exists.
// The returned bool reports whether a User was created.
func (svc *service) BootstrapAdmin(ctx context.Context, identifier, pwd string) (User, bool, error) {
	identifier = core.CleanString(identifier)
	if identifier == "" || pwd == "" {
		return User{}, false, core.NewValidationError(errors.New("identifier and password are required"))
	}

	usr, err := svc.repo.GetUserByIdentifier(ctx, identifier)
	if err == nil {
		return usr, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, false, pkgerrors.Wrap(err, "finding user by identifier")
	}

	usr, err = svc.create(ctx, identifier, pwd, RoleAdmin)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			usr, err = svc.repo.GetUserByIdentifier(ctx, identifier)
			return usr, false, pkgerrors.Wrap(err, "finding user by identifier")
		}
		return User{}, false, pkgerrors.Wrap(err, "creating admin")
	}
	return usr, true, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByIdentifier(ctx context.Context, identifier string) (User, error) {
	return svc.repo.GetUserByIdentifier(ctx, core.CleanString(identifier))
}
