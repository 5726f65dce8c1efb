package config

import (
	"flag"
	"regexp"

	"GophBox/internal/blob"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN    string `env:"DATABASE_URI"`
	AuthSecret     string `env:"AUTH_SECRET"`
	MaxUploadMB    int64  `env:"MAX_UPLOAD_MB"`
	TrashWorkers   int    `env:"TRASH_WORKERS"`
	MaxFolderDepth int    `env:"MAX_FOLDER_DEPTH"`
	LogJSON        bool   `env:"LOG_JSON"`

	// Blob storage
	StorageType      string `env:"STORAGE_TYPE"`
	StorageLocalPath string `env:"STORAGE_LOCAL_PATH"`
	StoragePublicURL string `env:"STORAGE_PUBLIC_URL"`
	StorageBucket    string `env:"STORAGE_BUCKET"`
	StorageRegion    string `env:"STORAGE_REGION"`
	StorageEndpoint  string `env:"STORAGE_ENDPOINT"`
	StorageAccessKey string `env:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `env:"STORAGE_SECRET_KEY"`
	StorageDomain    string `env:"STORAGE_DOMAIN"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenDir  string `env:"CLIENT_TOKEN_DIR"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres DSN или sqlite:<path>)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.Int64Var(&cfg.MaxUploadMB, "max-upload-mb", cfg.MaxUploadMB, "максимальный размер загружаемого файла, МБ")
	flag.IntVar(&cfg.TrashWorkers, "trash-workers", cfg.TrashWorkers, "число параллельных удалений при очистке корзины")
	flag.StringVar(&cfg.StorageType, "storage", cfg.StorageType, "тип хранилища: local, s3, aliyun, tencent, qiniu")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the GophBox server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenDir, "token-dir", cfg.TokenDir, "directory for the auth token (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

// applyDefaults заполняет незаданные значения.
func (c *Config) applyDefaults() {
	if c.AuthSecret == "" {
		c.AuthSecret = "dev-secret-key"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 50
	}
	if c.TrashWorkers <= 0 {
		c.TrashWorkers = 8
	}
	if c.MaxFolderDepth <= 0 {
		c.MaxFolderDepth = 32
	}
	if c.StorageType == "" {
		c.StorageType = string(blob.TypeLocal)
	}
	if c.StorageLocalPath == "" {
		c.StorageLocalPath = "./storage/files"
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(c.BaseURL) {
		c.BaseURL = "localhost:8081"
	}

	if c.EnableHTTPS {
		c.ServerURL = "https://" + c.BaseURL
	} else {
		c.ServerURL = "http://" + c.BaseURL
	}

	if c.StoragePublicURL == "" && c.StorageType == string(blob.TypeLocal) {
		c.StoragePublicURL = c.ServerURL + "/blobs"
	}
}

// MaxUploadBytes: лимит тела запроса загрузки.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// BlobConfig собирает настройки для blob.NewStore.
func (c *Config) BlobConfig() blob.Config {
	return blob.Config{
		Type:      blob.Type(c.StorageType),
		LocalPath: c.StorageLocalPath,
		PublicURL: c.StoragePublicURL,
		Bucket:    c.StorageBucket,
		Region:    c.StorageRegion,
		Endpoint:  c.StorageEndpoint,
		AccessKey: c.StorageAccessKey,
		SecretKey: c.StorageSecretKey,
		Domain:    c.StorageDomain,
	}
}
