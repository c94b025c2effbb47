package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "platefinder", cfg.Database.Database)
	assert.Equal(t, "mock", cfg.Places.Provider)
	assert.Equal(t, 90*time.Second, cfg.Pipeline.MaxRunningAge)
	assert.Equal(t, 500.0, cfg.Pipeline.LocationDriftMeters)
	assert.Equal(t, 5, cfg.Pipeline.PoolFloor)
	assert.Equal(t, 5, cfg.Pipeline.WeightClampMin)
	assert.Equal(t, 50, cfg.Pipeline.WeightClampMax)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PIPELINE_MAX_RUNNING_AGE", "2m")
	t.Setenv("PIPELINE_RADIUS_GROWTH_RATIO", "0.75")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Pipeline.MaxRunningAge)
	assert.Equal(t, 0.75, cfg.Pipeline.RadiusGrowthRatio)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", cfg.DatabaseDSN())
}
