package schoolstore

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/go-arrower/schoolstore/secret"
)

// Config is a structure used for service configuration.
// It is intended to be mapped by viper.
type Config struct {
	ApplicationName string `mapstructure:"application_name" json:"applicationName"`
	InstanceName    string `mapstructure:"instance_name"    json:"instanceName"`

	Environment Environment `mapstructure:"environment" json:"environment"`
	Debug       bool        `mapstructure:"debug"       json:"debug"`

	HTTP    HTTP    `mapstructure:"http"    json:"http"`
	Storage Storage `mapstructure:"storage" json:"storage"`
	OTEL    OTEL    `mapstructure:"otel"    json:"otel"`
}

const (
	LocalEnv       Environment = "local"
	TestEnv        Environment = "test"
	DevelopmentEnv Environment = "dev"
	ProductionEnv  Environment = "production"
)

// Environments is the list of all supported environments.
func Environments() []Environment {
	return []Environment{LocalEnv, TestEnv, DevelopmentEnv, ProductionEnv}
}

type Environment string

// Storage drivers, see Storage.Driver.
const (
	MemoryDriver   = "memory"
	FileDriver     = "file"
	SQLiteDriver   = "sqlite"
	PostgresDriver = "postgres"
	S3Driver       = "s3"
)

type (
	HTTP struct {
		Port                  int  `mapstructure:"port"                    json:"port"`
		StatusEndpointEnabled bool `mapstructure:"status_endpoint_enabled" json:"-"`
		StatusEndpointPort    int  `mapstructure:"status_endpoint_port"    json:"-"`
	}

	// Storage selects where the record sets are kept and how they are encoded.
	Storage struct {
		// Driver is one of memory, file, sqlite, postgres, or s3.
		Driver string `mapstructure:"driver" json:"driver"`
		// Codec is json or yaml.
		Codec string `mapstructure:"codec" json:"codec"`
		// KeyFormat is timestamp, ulid, or uuid.
		KeyFormat string `mapstructure:"key_format" json:"keyFormat"`
		// OnCorrupt is reseed or fail.
		OnCorrupt string `mapstructure:"on_corrupt" json:"onCorrupt"`

		Dir        string   `mapstructure:"dir"         json:"dir"`
		SQLitePath string   `mapstructure:"sqlite_path" json:"sqlitePath"`
		Postgres   Postgres `mapstructure:"postgres"    json:"postgres"`
		S3         S3       `mapstructure:"s3"          json:"s3"`
	}

	Postgres struct {
		User     string        `mapstructure:"user"      json:"user"`
		Password secret.Secret `mapstructure:"password"  json:"-"`
		Database string        `mapstructure:"database"  json:"database"`
		Host     string        `mapstructure:"host"      json:"host"`
		Port     int           `mapstructure:"port"      json:"port"`
		SSLMode  string        `mapstructure:"ssl_mode"  json:"sslMode"`
		MaxConns int           `mapstructure:"max_conns" json:"maxConns"`
	}

	S3 struct {
		Bucket          string        `mapstructure:"bucket"            json:"bucket"`
		Region          string        `mapstructure:"region"            json:"region"`
		Endpoint        string        `mapstructure:"endpoint"          json:"endpoint"`
		Prefix          string        `mapstructure:"prefix"            json:"prefix"`
		AccessKeyID     string        `mapstructure:"access_key_id"     json:"-"`
		SecretAccessKey secret.Secret `mapstructure:"secret_access_key" json:"-"`
		PathStyle       bool          `mapstructure:"path_style"        json:"pathStyle"`
		CreateBucket    bool          `mapstructure:"create_bucket"     json:"createBucket"`
	}

	// OTEL configures the trace exporter. If Host is empty, no traces are exported.
	OTEL struct {
		Host     string `mapstructure:"host"     json:"host"`
		Port     int    `mapstructure:"port"     json:"port"`
		Hostname string `mapstructure:"hostname" json:"hostname"`
	}
)

// DefaultViper returns a new viper instance with all default values
// from Config set.
// Every value can be overwritten by the config file schoolstore.yaml, searched in the
// working directory and /etc/schoolstore, or by an env variable,
// e.g. SCHOOLSTORE_STORAGE_DRIVER for storage.driver.
func DefaultViper() *Viper {
	vip := viper.New()

	vip.SetConfigName("schoolstore")
	vip.SetConfigType("yaml")
	vip.AddConfigPath(".")
	vip.AddConfigPath("/etc/schoolstore")

	vip.SetEnvPrefix("SCHOOLSTORE")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	vip.SetDefault("application_name", "schoolstore")
	vip.SetDefault("instance_name", "")

	vip.SetDefault("environment", "local")
	vip.SetDefault("debug", false)

	vip.SetDefault("http.port", 8080)
	vip.SetDefault("http.status_endpoint_enabled", true)
	vip.SetDefault("http.status_endpoint_port", 2223)

	vip.SetDefault("storage.driver", FileDriver)
	vip.SetDefault("storage.codec", "json")
	vip.SetDefault("storage.key_format", "timestamp")
	vip.SetDefault("storage.on_corrupt", "reseed")
	vip.SetDefault("storage.dir", "data")
	vip.SetDefault("storage.sqlite_path", "schoolstore.db")

	vip.SetDefault("storage.postgres.user", "schoolstore")
	vip.SetDefault("storage.postgres.password", "secret")
	vip.SetDefault("storage.postgres.database", "schoolstore")
	vip.SetDefault("storage.postgres.host", "localhost")
	vip.SetDefault("storage.postgres.port", 5432)
	vip.SetDefault("storage.postgres.ssl_mode", "disable")
	vip.SetDefault("storage.postgres.max_conns", 10)

	vip.SetDefault("storage.s3.bucket", "")
	vip.SetDefault("storage.s3.region", "us-east-1")
	vip.SetDefault("storage.s3.endpoint", "")
	vip.SetDefault("storage.s3.prefix", "")
	vip.SetDefault("storage.s3.access_key_id", "")
	vip.SetDefault("storage.s3.secret_access_key", "")
	vip.SetDefault("storage.s3.path_style", false)
	vip.SetDefault("storage.s3.create_bucket", false)

	vip.SetDefault("otel.host", "")
	vip.SetDefault("otel.port", 4317)
	vip.SetDefault("otel.hostname", "")

	return &Viper{Viper: vip}
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Viper is a wrapper around viper.Viper for configuration loading.
// The only purpose is to overwrite the Unmarshal method,
// so that secret.Secret and Environment are decoded and validated
// without the caller having to think about it.
type Viper struct {
	*viper.Viper
}

// ReadInConfig reads the config file, if there is one. A missing file is not an error.
func (vip *Viper) ReadInConfig() error {
	err := vip.Viper.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("%w: could not read config file: %v", ErrInvalidConfig, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (vip *Viper) Unmarshal(rawVal any, opts ...viper.DecoderConfigOption) error {
	opts = append([]viper.DecoderConfigOption{viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		allowedEnvironmentHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))}, opts...)

	if err := vip.Viper.Unmarshal(rawVal, opts...); err != nil {
		return fmt.Errorf("%w: could not decode configuration into struct: %v", ErrInvalidConfig, err) //nolint:errorlint,lll // prevent err in api
	}

	return nil
}

// Load reads the configuration from all sources and validates it.
func Load() (*Config, error) {
	vip := DefaultViper()

	if err := vip.ReadInConfig(); err != nil {
		return nil, err
	}

	conf := &Config{}
	if err := vip.Unmarshal(conf); err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// Validate checks values that can only be wrong in combination.
func (c *Config) Validate() error {
	drivers := []string{MemoryDriver, FileDriver, SQLiteDriver, PostgresDriver, S3Driver}
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("%w: storage driver %q, use one of: %s", ErrInvalidConfig, c.Storage.Driver, strings.Join(drivers, ", "))
	}

	if c.Storage.Driver == S3Driver && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("%w: storage driver s3 requires a bucket", ErrInvalidConfig)
	}

	if c.Storage.Driver == FileDriver && c.Storage.Dir == "" {
		return fmt.Errorf("%w: storage driver file requires a dir", ErrInvalidConfig)
	}

	return nil
}

func allowedEnvironmentHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data any) (interface{}, error) {
		if t != reflect.TypeOf(Environment("")) {
			return data, nil
		}

		env := Environments()
		if slices.Contains(env, Environment(fmt.Sprint(data))) {
			return data, nil
		}

		e := make([]string, 0, len(env))
		for _, env := range env {
			e = append(e, string(env))
		}

		return data, fmt.Errorf("value is not allowed, use one of: %s", strings.Join(e, ", ")) //nolint:err113,lll // accept dynamic error
	}
}
