// Package config loads haccpd settings from an optional YAML file, a .env
// file and HACCP_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"haccpcore/internal/blob"
	"haccpcore/internal/core"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
}

// JWTConfig holds the bearer-token secret and issuer. An empty secret disables auth.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// StorageConfig selects the snapshot backend and its connection settings.
type StorageConfig struct {
	Driver          string `mapstructure:"driver"`
	SQLitePath      string `mapstructure:"sqlitePath"`
	PostgresDSN     string `mapstructure:"postgresDSN"`
	MongoURI        string `mapstructure:"mongoURI"`
	MongoDatabase   string `mapstructure:"mongoDatabase"`
	MongoCollection string `mapstructure:"mongoCollection"`
	RedisURL        string `mapstructure:"redisURL"`
}

// BlobConfig selects the report archive backend.
type BlobConfig struct {
	Driver          string `mapstructure:"driver"`
	FSRoot          string `mapstructure:"fsRoot"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	PathStyle       bool   `mapstructure:"pathStyle"`
}

// Config is the full haccpd and haccp-report configuration.
type Config struct {
	Restaurant  string        `mapstructure:"restaurant"`
	LimitPolicy string        `mapstructure:"limitPolicy"`
	LogLevel    string        `mapstructure:"logLevel"`
	Trace       bool          `mapstructure:"trace"`
	Server      ServerConfig  `mapstructure:"server"`
	JWT         JWTConfig     `mapstructure:"jwt"`
	Storage     StorageConfig `mapstructure:"storage"`
	Blob        BlobConfig    `mapstructure:"blob"`
}

var envBindings = map[string]string{
	"restaurant":              "HACCP_RESTAURANT",
	"limitPolicy":             "HACCP_LIMIT_POLICY",
	"logLevel":                "HACCP_LOG_LEVEL",
	"trace":                   "HACCP_TRACE",
	"server.port":             "HACCP_SERVER_PORT",
	"server.readTimeout":      "HACCP_SERVER_READ_TIMEOUT",
	"server.shutdownTimeout":  "HACCP_SERVER_SHUTDOWN_TIMEOUT",
	"server.allowedOrigins":   "HACCP_SERVER_ALLOWED_ORIGINS",
	"jwt.secret":              "HACCP_JWT_SECRET",
	"jwt.issuer":              "HACCP_JWT_ISSUER",
	"storage.driver":          "HACCP_STORAGE_DRIVER",
	"storage.sqlitePath":      "HACCP_SQLITE_PATH",
	"storage.postgresDSN":     "HACCP_POSTGRES_DSN",
	"storage.mongoURI":        "HACCP_MONGO_URI",
	"storage.mongoDatabase":   "HACCP_MONGO_DATABASE",
	"storage.mongoCollection": "HACCP_MONGO_COLLECTION",
	"storage.redisURL":        "HACCP_REDIS_URL",
	"blob.driver":             "HACCP_BLOB_DRIVER",
	"blob.fsRoot":             "HACCP_BLOB_FS_ROOT",
	"blob.bucket":             "HACCP_BLOB_S3_BUCKET",
	"blob.region":             "HACCP_BLOB_S3_REGION",
	"blob.endpoint":           "HACCP_BLOB_S3_ENDPOINT",
	"blob.accessKeyID":        "HACCP_BLOB_S3_ACCESS_KEY_ID",
	"blob.secretAccessKey":    "HACCP_BLOB_S3_SECRET_ACCESS_KEY",
	"blob.pathStyle":          "HACCP_BLOB_S3_PATH_STYLE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("limitPolicy", string(core.LimitPolicyTrust))
	v.SetDefault("logLevel", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("jwt.issuer", "haccpd")
	v.SetDefault("storage.driver", string(core.StorageSQLite))
	v.SetDefault("storage.sqlitePath", "haccp.db")
	v.SetDefault("blob.driver", string(blob.DriverFilesystem))
	v.SetDefault("blob.fsRoot", "./reports")
}

// Load reads config.yaml from dir (if present), then a .env file from dir (if
// present), then the process environment. A missing file is not an error.
func Load(dir string) (Config, error) {
	if dir == "" {
		dir = "."
	}
	if err := godotenv.Load(dir + "/.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be caught by decoding alone.
func (c Config) Validate() error {
	if _, err := core.ParseLimitPolicy(c.LimitPolicy); err != nil {
		return err
	}
	switch core.StorageDriver(c.Storage.Driver) {
	case core.StorageMemory, core.StorageSQLite:
	case core.StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("HACCP_POSTGRES_DSN is required for the postgres driver")
		}
	case core.StorageMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("HACCP_MONGO_URI is required for the mongo driver")
		}
	case core.StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("HACCP_REDIS_URL is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch blob.Driver(c.Blob.Driver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.Bucket == "" {
			return errors.New("HACCP_BLOB_S3_BUCKET is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	return nil
}

// Policy returns the parsed limit policy.
func (c Config) Policy() core.LimitPolicy {
	p, err := core.ParseLimitPolicy(c.LimitPolicy)
	if err != nil {
		return core.LimitPolicyTrust
	}
	return p
}

// StorageSettings maps the storage section onto the core store factory.
func (c Config) StorageSettings() core.StorageConfig {
	return core.StorageConfig{
		Driver:          core.StorageDriver(c.Storage.Driver),
		Key:             core.StoreKey(c.Restaurant),
		SQLitePath:      c.Storage.SQLitePath,
		PostgresDSN:     c.Storage.PostgresDSN,
		MongoURI:        c.Storage.MongoURI,
		MongoDatabase:   c.Storage.MongoDatabase,
		MongoCollection: c.Storage.MongoCollection,
		RedisURL:        c.Storage.RedisURL,
	}
}

// BlobSettings maps the blob section onto the archive factory.
func (c Config) BlobSettings() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:          c.Blob.Bucket,
			Region:          c.Blob.Region,
			Endpoint:        c.Blob.Endpoint,
			AccessKeyID:     c.Blob.AccessKeyID,
			SecretAccessKey: c.Blob.SecretAccessKey,
			PathStyle:       c.Blob.PathStyle,
		},
	}
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	port := strings.TrimPrefix(c.Server.Port, ":")
	return ":" + port
}

// splitOrigins accepts both YAML lists and a comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
