package app

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// Имена поддерживаемых хранилищ заказов.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// Storage выбирает реализацию репозитория: memory, file или postgres.
	Storage string
	// DataDir — каталог файлового хранилища.
	DataDir string
	// PostgresDSN требуется только для Storage=postgres.
	PostgresDSN string
	// MetricsAddr — адрес HTTP-сервера метрик и health checks.
	MetricsAddr string
}

// DefaultConfig возвращает настройки по умолчанию: файловое хранилище
// в ./data и метрики на :9090.
func DefaultConfig() Config {
	return Config{
		Storage:     StorageFile,
		DataDir:     "data",
		MetricsAddr: ":9090",
	}
}

// LoadConfig читает .env (если файл есть) и переменные окружения BARISTA_*.
func LoadConfig() Config {
	// Отсутствие .env — штатная ситуация.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if v := os.Getenv("BARISTA_STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("BARISTA_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BARISTA_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("BARISTA_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	return cfg
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	case StorageFile:
		if c.DataDir == "" {
			return fmt.Errorf("data dir is required for file storage")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.Storage == StoragePostgres && c.PostgresDSN == "" {
		return fmt.Errorf("postgres dsn is required for postgres storage")
	}
	return nil
}

// DataDirProvider выдаёт каталог данных, создавая его при первом обращении.
func (c Config) DataDirProvider() domain.DataDirProvider {
	dir := c.DataDir
	return domain.DataDirFunc(func() (string, error) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return dir, nil
	})
}
