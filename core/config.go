package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Auth     AuthConfig
		Database DatabaseConfig
		Storage  StorageConfig
		Admin    AdminConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		AllowOrigins    []string
	}

	AuthConfig struct {
		BcryptCost int
	}

	DatabaseConfig struct {
		Engine         string // mongo | postgres | memory
		URI            string
		Name           string
		ConnectTimeout time.Duration
	}

	StorageConfig struct {
		Backend       string // disk | s3
		UploadDir     string
		URLPrefix     string
		MaxUploadSize string // echo BodyLimit format, eg. "20M"

		S3Bucket    string
		S3Region    string
		S3Endpoint  string
		S3AccessKey string
		S3SecretKey string
		S3PublicURL string
	}

	AdminConfig struct {
		Identifier string
		Password   string
	}
)

const (
	EngineMongo    = "mongo"
	EnginePostgres = "postgres"
	EngineMemory   = "memory"

	StorageDisk = "disk"
	StorageS3   = "s3"
)

// NewConfig loads the app configuration.
// Values come from (in order of precedence): environment variables prefixed with the ENV name
// (eg. DEV_DATABASE_URI), the optional `config/.env.<env>` file, then defaults.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	// hosting platforms (Render, Heroku..) only hand us PORT
	addr := v.GetString("server.address")
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      wd,
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         addr,
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			AllowOrigins:    v.GetStringSlice("server.allowOrigins"),
		},
		Auth: AuthConfig{
			BcryptCost: v.GetInt("auth.bcryptCost"),
		},
		Database: DatabaseConfig{
			Engine:         strings.ToLower(v.GetString("database.engine")),
			URI:            v.GetString("database.uri"),
			Name:           v.GetString("database.name"),
			ConnectTimeout: v.GetDuration("database.connectTimeout"),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(v.GetString("storage.backend")),
			UploadDir:     absPath(wd, v.GetString("storage.uploadDir")),
			URLPrefix:     v.GetString("storage.urlPrefix"),
			MaxUploadSize: v.GetString("storage.maxUploadSize"),
			S3Bucket:      v.GetString("storage.s3Bucket"),
			S3Region:      v.GetString("storage.s3Region"),
			S3Endpoint:    v.GetString("storage.s3Endpoint"),
			S3AccessKey:   v.GetString("storage.s3AccessKey"),
			S3SecretKey:   v.GetString("storage.s3SecretKey"),
			S3PublicURL:   v.GetString("storage.s3PublicURL"),
		},
		Admin: AdminConfig{
			Identifier: v.GetString("admin.identifier"),
			Password:   v.GetString("admin.password"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Entregas")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.allowOrigins", []string{"*"})

	v.SetDefault("auth.bcryptCost", 10)

	v.SetDefault("database.engine", EngineMongo)
	v.SetDefault("database.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("database.name", "sistema_entregas")
	v.SetDefault("database.connectTimeout", 5*time.Second)

	v.SetDefault("storage.backend", StorageDisk)
	v.SetDefault("storage.uploadDir", "uploads")
	v.SetDefault("storage.urlPrefix", "/uploads")
	v.SetDefault("storage.maxUploadSize", "20M")
	v.SetDefault("storage.s3Bucket", "")
	v.SetDefault("storage.s3Region", "us-east-1")
	v.SetDefault("storage.s3Endpoint", "")
	v.SetDefault("storage.s3AccessKey", "")
	v.SetDefault("storage.s3SecretKey", "")
	v.SetDefault("storage.s3PublicURL", "")

	v.SetDefault("admin.identifier", "admin")
	v.SetDefault("admin.password", "123456")
}

func absPath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
