package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string

	ContentDir string
	AssetsDir  string
	RepoDir    string

	GitAuthorName  string
	GitAuthorEmail string
	GitRemote      string
	GitPush        bool
	GitTimeout     time.Duration

	Watch bool

	Log      string
	LogLevel string
	Env      string // dev|prod
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует — чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	gitTimeout, err := time.ParseDuration(def(os.Getenv("GIT_TIMEOUT"), "30s"))
	if err != nil {
		return nil, fmt.Errorf("некорректный GIT_TIMEOUT: %w", err)
	}

	gitPush, _ := strconv.ParseBool(def(os.Getenv("GIT_PUSH"), "false"))
	watch, _ := strconv.ParseBool(def(os.Getenv("WATCH"), "false"))

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "8080"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),

		ContentDir: def(os.Getenv("CONTENT_DIR"), "content"),
		AssetsDir:  def(os.Getenv("ASSETS_DIR"), "public/assets"),
		RepoDir:    def(os.Getenv("REPO_DIR"), "."),

		GitAuthorName:  def(os.Getenv("GIT_AUTHOR_NAME"), "blogsync"),
		GitAuthorEmail: def(os.Getenv("GIT_AUTHOR_EMAIL"), "blogsync@localhost"),
		GitRemote:      os.Getenv("GIT_REMOTE"),
		GitPush:        gitPush,
		GitTimeout:     gitTimeout,

		Watch: watch,

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	// Критичные: БД
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	// Git — предупреждение: без remote пуш просто не будет работать
	if c.GitPush && c.GitRemote == "" {
		warnings = append(warnings, "GIT_PUSH=true, но GIT_REMOTE не задан")
	}

	if _, statErr := os.Stat(c.RepoDir); statErr != nil {
		warnings = append(warnings, "REPO_DIR недоступен: "+c.RepoDir)
	}

	if _, atoiErr := strconv.Atoi(c.Port); atoiErr != nil {
		warnings = append(warnings, "PORT не похож на номер порта: "+c.Port)
	}

	return warnings, nil
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}
