package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"KITCHEN_APP_NAME",
	"KITCHEN_APP_ENV",
	"KITCHEN_APP_PORT",
	"KITCHEN_DATABASE_DRIVER",
	"KITCHEN_DATABASE_HOST",
	"KITCHEN_DATABASE_PORT",
	"KITCHEN_DATABASE_USER",
	"KITCHEN_DATABASE_PASSWORD",
	"KITCHEN_DATABASE_DBNAME",
	"KITCHEN_DATABASE_SSLMODE",
	"KITCHEN_DATABASE_PATH",
	"KITCHEN_DATABASE_MAX_OPEN_CONNS",
	"KITCHEN_DATABASE_MAX_IDLE_CONNS",
	"KITCHEN_JWT_SECRET",
	"KITCHEN_REDIS_ENABLED",
	"KITCHEN_COSTING_DENSITY_CACHE_TTL",
	"KITCHEN_COSTING_CONSERVATION_TOLERANCE",
	"KITCHEN_TELEMETRY_SAMPLING_RATIO",
	"KITCHEN_TELEMETRY_LOGS_ENABLED",
	"KITCHEN_HTTP_SWAGGER_ENABLED",
}

// isolateEnv clears every key the tests touch and restores it afterwards
func isolateEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string, len(configEnvKeys))
	for _, k := range configEnvKeys {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		isolateEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "kitchenops-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "kitchen", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, 10*time.Minute, cfg.Costing.DensityCacheTTL)
		assert.True(t, cfg.Costing.ConservationTolerance.Equal(decimal.New(1, -6)))
		assert.True(t, cfg.HTTP.SwaggerEnabled)
		assert.False(t, cfg.Telemetry.LogsEnabled)
	})

	t.Run("loads values from environment variables with KITCHEN prefix", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("KITCHEN_APP_NAME", "test-app")
		os.Setenv("KITCHEN_APP_PORT", "9000")
		os.Setenv("KITCHEN_DATABASE_DRIVER", "MySQL")
		os.Setenv("KITCHEN_DATABASE_HOST", "testdb.local")
		os.Setenv("KITCHEN_DATABASE_USER", "testuser")
		os.Setenv("KITCHEN_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("KITCHEN_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("KITCHEN_REDIS_ENABLED", "true")
		os.Setenv("KITCHEN_COSTING_DENSITY_CACHE_TTL", "90s")
		os.Setenv("KITCHEN_COSTING_CONSERVATION_TOLERANCE", "0.0001")
		os.Setenv("KITCHEN_HTTP_SWAGGER_ENABLED", "false")
		os.Setenv("KITCHEN_TELEMETRY_LOGS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverMySQL, cfg.Database.Driver)
		assert.Equal(t, 3306, cfg.Database.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, 90*time.Second, cfg.Costing.DensityCacheTTL)
		assert.True(t, cfg.Costing.ConservationTolerance.Equal(decimal.RequireFromString("0.0001")))
		assert.False(t, cfg.HTTP.SwaggerEnabled)
		assert.True(t, cfg.Telemetry.LogsEnabled)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("KITCHEN_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects malformed tolerance", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("KITCHEN_COSTING_CONSERVATION_TOLERANCE", "tiny")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conservation_tolerance")
	})

	t.Run("rejects tolerance of one or more", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("KITCHEN_COSTING_CONSERVATION_TOLERANCE", "1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conservation_tolerance")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("KITCHEN_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("KITCHEN_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("KITCHEN_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("validates sampling ratio", func(t *testing.T) {
		isolateEnv(t)
		os.Setenv("KITCHEN_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func() {
		os.Setenv("KITCHEN_APP_ENV", "production")
		os.Setenv("KITCHEN_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("KITCHEN_DATABASE_PASSWORD", "secure-password")
		os.Setenv("KITCHEN_DATABASE_SSLMODE", "require")
	}

	tests := []struct {
		name    string
		mutate  func()
		wantErr string
	}{
		{"valid production config", func() {}, ""},
		{"requires jwt.secret", func() { os.Unsetenv("KITCHEN_JWT_SECRET") }, "jwt.secret is required in production"},
		{"requires a long jwt.secret", func() { os.Setenv("KITCHEN_JWT_SECRET", "short") }, "at least 32 characters"},
		{"requires database.password", func() { os.Unsetenv("KITCHEN_DATABASE_PASSWORD") }, "database.password is required"},
		{"requires SSL", func() { os.Setenv("KITCHEN_DATABASE_SSLMODE", "disable") }, "sslmode cannot be 'disable'"},
		{"rejects sqlite", func() { os.Setenv("KITCHEN_DATABASE_DRIVER", "sqlite") }, "sqlite is not supported in production"},
		{"mysql ignores sslmode", func() {
			os.Setenv("KITCHEN_DATABASE_DRIVER", "mysql")
			os.Setenv("KITCHEN_DATABASE_SSLMODE", "disable")
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			setValidProductionBase()
			tt.mutate()

			cfg, err := Load()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "production", cfg.App.Env)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid postgres DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}
		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("mysql DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverMySQL, Host: "db", Port: 3306, User: "chef", Password: "pw", DBName: "kitchen"}
		assert.Equal(t, "chef:pw@tcp(db:3306)/kitchen?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
	})

	t.Run("sqlite DSN is the path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"}
		assert.Equal(t, ":memory:", cfg.DSN())
	})
}
