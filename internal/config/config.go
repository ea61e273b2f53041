package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers for the workout snapshot.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageS3     = "s3"
	StorageMongo  = "mongo"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Location  LocationConfig  `mapstructure:"location"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig selects where the snapshot lives: file, memory, s3 or mongo.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Key    string `mapstructure:"key"`
	Dir    string `mapstructure:"dir"` // file driver only
}

type DatabaseConfig struct {
	URI        string `mapstructure:"uri"`
	Name       string `mapstructure:"name"`
	Collection string `mapstructure:"collection"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	Prefix          string `mapstructure:"prefix"`
	UseSSL          bool   `mapstructure:"use_ssl"` // rejects a plain http endpoint
}

// GeocodingConfig configures the Nominatim reverse geocoder.
type GeocodingConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AuthConfig protects the API with a single login. An empty PasswordHash
// leaves the API open.
type AuthConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt
}

// Enabled reports whether login is required.
func (a AuthConfig) Enabled() bool {
	return a.PasswordHash != ""
}

// LocationConfig is the fixed "current position" used to centre the map.
type LocationConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

// LoadConfig reads configuration from path/config.yaml and the environment.
// A missing config file is not an error.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	config.Storage.Driver = strings.ToLower(strings.TrimSpace(config.Storage.Driver))
	if err = config.Validate(); err != nil {
		return
	}
	return config, nil
}

// ErrMissingJWTSecret means login is enabled without a signing secret.
var ErrMissingJWTSecret = errors.New("jwt.secret must be set when auth.password_hash is configured")

// Validate checks settings that have no safe default.
func (c Config) Validate() error {
	if c.Auth.Enabled() && strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.key", "workouts")
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "workout_tracker")
	v.SetDefault("database.collection", "snapshots")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("geocoding.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding.user_agent", "workout-tracker/1.0")
	v.SetDefault("geocoding.timeout", "10s")
	v.SetDefault("geocoding.min_interval", "1s")
	v.SetDefault("jwt.secret", "") // required when auth is enabled
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("location.enabled", false)
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
}
