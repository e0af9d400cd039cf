package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
	"github.com/trezcool/entregas/core/user"
)

// NewConfig returns a TEST configuration with the cheapest bcrypt cost.
func NewConfig(uploadDir string) *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Entregas",
		Server: core.ServerConfig{
			Address:      ":0",
			AllowOrigins: []string{"*"},
		},
		Auth: core.AuthConfig{BcryptCost: bcrypt.MinCost},
		Database: core.DatabaseConfig{
			Engine: core.EngineMemory,
		},
		Storage: core.StorageConfig{
			Backend:       core.StorageDisk,
			UploadDir:     uploadDir,
			URLPrefix:     "/uploads",
			MaxUploadSize: "1M",
		},
		Admin: core.AdminConfig{Identifier: "admin", Password: "123456"},
	}
}

// NewValidator returns a validator with every app validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	delivery.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(t *testing.T, repo user.Repository, identifier, pwd, role string, createdAt ...time.Time) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Identifier: identifier,
		Role:       role,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd, bcrypt.MinCost); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateDelivery(
	t *testing.T,
	repo delivery.Repository,
	owner, subject string,
	status delivery.Status,
	createdAt ...time.Time,
) delivery.Delivery {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	d := delivery.Delivery{
		Owner:     owner,
		Subject:   subject,
		Task:      "Tarea de " + subject,
		DueDate:   tstamp.Add(7 * 24 * time.Hour).Truncate(24 * time.Hour),
		FileURL:   "#",
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	d, err := repo.CreateDelivery(context.Background(), d)
	if err != nil {
		t.Fatalf("CreateDelivery() failed: %v", err)
	}
	return d
}
