package schoolstore_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/schoolstore"
)

func TestDefaultViper(t *testing.T) {
	t.Parallel()

	vip := schoolstore.DefaultViper()
	assert.NotEmpty(t, vip)

	// This test enforces the default values, so whenever they change,
	// make sure to also update the example config file!

	assert.Equal(t, "schoolstore", vip.GetString("application_name"))
	assert.Empty(t, vip.Get("instance_name"))

	assert.Equal(t, schoolstore.LocalEnv, schoolstore.Environment(vip.GetString("environment")))
	assert.False(t, vip.GetBool("debug"))

	assert.Equal(t, 8080, vip.GetInt("http.port"))
	assert.True(t, vip.GetBool("http.status_endpoint_enabled"))
	assert.Equal(t, 2223, vip.GetInt("http.status_endpoint_port"))

	assert.Equal(t, "file", vip.GetString("storage.driver"))
	assert.Equal(t, "json", vip.GetString("storage.codec"))
	assert.Equal(t, "timestamp", vip.GetString("storage.key_format"))
	assert.Equal(t, "reseed", vip.GetString("storage.on_corrupt"))
	assert.Equal(t, "data", vip.GetString("storage.dir"))
	assert.Equal(t, "schoolstore.db", vip.GetString("storage.sqlite_path"))

	assert.Equal(t, "schoolstore", vip.GetString("storage.postgres.user"))
	assert.Equal(t, "secret", vip.GetString("storage.postgres.password"))
	assert.Equal(t, "schoolstore", vip.GetString("storage.postgres.database"))
	assert.Equal(t, "localhost", vip.GetString("storage.postgres.host"))
	assert.Equal(t, 5432, vip.GetInt("storage.postgres.port"))
	assert.Equal(t, "disable", vip.GetString("storage.postgres.ssl_mode"))
	assert.Equal(t, 10, vip.GetInt("storage.postgres.max_conns"))

	assert.Empty(t, vip.GetString("storage.s3.bucket"))
	assert.Equal(t, "us-east-1", vip.GetString("storage.s3.region"))
	assert.False(t, vip.GetBool("storage.s3.path_style"))

	assert.Empty(t, vip.GetString("otel.host"))
	assert.Equal(t, 4317, vip.GetInt("otel.port"))
}

func TestViper_Unmarshal(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		conf := schoolstore.Config{}

		err := schoolstore.DefaultViper().Unmarshal(&conf)
		require.NoError(t, err)
		assert.Equal(t, schoolstore.LocalEnv, conf.Environment)
		assert.Equal(t, schoolstore.FileDriver, conf.Storage.Driver)
		assert.Equal(t, "secret", conf.Storage.Postgres.Password.Secret())
		assert.NoError(t, conf.Validate())
	})

	t.Run("invalid environment", func(t *testing.T) {
		t.Parallel()

		vip := schoolstore.DefaultViper()
		vip.SetConfigFile("./testdata/config/invalid-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := schoolstore.Config{}

		err = vip.Unmarshal(&conf)
		assert.ErrorIs(t, err, schoolstore.ErrInvalidConfig, "should fail when using unsupported enum values")
		assert.Contains(t, err.Error(), "use one of: ", "error message should list out all accepted environments")
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		vip := schoolstore.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := schoolstore.Config{}

		err = vip.Unmarshal(&conf)
		require.NoError(t, err)
		assert.Equal(t, schoolstore.TestEnv, conf.Environment)
		assert.Equal(t, 9090, conf.HTTP.Port)
		assert.Equal(t, schoolstore.PostgresDriver, conf.Storage.Driver)
		assert.Equal(t, "yaml", conf.Storage.Codec)
		assert.Equal(t, "ulid", conf.Storage.KeyFormat)
		assert.Equal(t, "fail", conf.Storage.OnCorrupt)
		assert.Equal(t, "school", conf.Storage.Postgres.User)
		assert.Equal(t, "localhost", conf.Storage.Postgres.Host, "default should stay for missing values")
	})

	t.Run("unmarshal secrets", func(t *testing.T) {
		t.Parallel()

		vip := schoolstore.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		require.NoError(t, vip.ReadInConfig())

		conf := schoolstore.Config{}

		err := vip.Unmarshal(&conf)
		require.NoError(t, err)
		assert.Equal(t, "my-db-secret", conf.Storage.Postgres.Password.Secret())
		assert.Equal(t, "my-s3-secret", conf.Storage.S3.SecretAccessKey.Secret())

		raw, err := json.Marshal(conf)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "my-db-secret")
		assert.NotContains(t, string(raw), "my-s3-secret")
		assert.NotContains(t, string(raw), "AKIAEXAMPLE")
	})

	t.Run("custom config", func(t *testing.T) {
		t.Parallel()

		type MyConfig struct {
			SomeStructField    struct{ A string }
			schoolstore.Config `mapstructure:",squash"`
		}

		vip := schoolstore.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		require.NoError(t, vip.ReadInConfig())

		conf := MyConfig{}

		err := vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, "my-db-secret", conf.Storage.Postgres.Password.Secret())
	})
}

func TestViper_UnmarshalEnv(t *testing.T) { //nolint:paralleltest // t.Setenv
	t.Setenv("SCHOOLSTORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("SCHOOLSTORE_HTTP_PORT", "8181")
	t.Setenv("SCHOOLSTORE_STORAGE_POSTGRES_PASSWORD", "from-env")

	conf := schoolstore.Config{}

	err := schoolstore.DefaultViper().Unmarshal(&conf)
	require.NoError(t, err)
	assert.Equal(t, schoolstore.SQLiteDriver, conf.Storage.Driver)
	assert.Equal(t, 8181, conf.HTTP.Port)
	assert.Equal(t, "from-env", conf.Storage.Postgres.Password.Secret())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		storage schoolstore.Storage
		valid   bool
	}{
		"memory":            {schoolstore.Storage{Driver: schoolstore.MemoryDriver}, true},
		"file":              {schoolstore.Storage{Driver: schoolstore.FileDriver, Dir: "data"}, true},
		"file without dir":  {schoolstore.Storage{Driver: schoolstore.FileDriver}, false},
		"s3":                {schoolstore.Storage{Driver: schoolstore.S3Driver, S3: schoolstore.S3{Bucket: "b"}}, true},
		"s3 without bucket": {schoolstore.Storage{Driver: schoolstore.S3Driver}, false},
		"unknown driver":    {schoolstore.Storage{Driver: "redis"}, false},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			conf := schoolstore.Config{Storage: tt.storage}

			err := conf.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, schoolstore.ErrInvalidConfig)
			}
		})
	}
}
