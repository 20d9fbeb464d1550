package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("MUDI_TEST_HOST", "db.internal")

	t.Run("变量存在", func(t *testing.T) {
		assert.Equal(t, "host: db.internal", expandEnv("host: ${MUDI_TEST_HOST:localhost}"))
	})

	t.Run("使用默认值", func(t *testing.T) {
		assert.Equal(t, "port: 5432", expandEnv("port: ${MUDI_TEST_UNSET_PORT:5432}"))
	})

	t.Run("空默认值", func(t *testing.T) {
		assert.Equal(t, "token: ", expandEnv("token: ${MUDI_TEST_UNSET_TOKEN:}"))
	})

	t.Run("未定义且无默认值保留原样", func(t *testing.T) {
		assert.Equal(t, "x: ${MUDI_TEST_UNSET_X}", expandEnv("x: ${MUDI_TEST_UNSET_X}"))
	})
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadFrom(t *testing.T) {
	t.Run("默认值兜底", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("APP_ENV", "unit")
		writeConfig(t, dir, "config.yaml", "app:\n  name: mudi-test\n")

		cfg, err := LoadFrom(dir)
		require.NoError(t, err)
		assert.Equal(t, "mudi-test", cfg.App.Name)
		assert.Equal(t, 0.6, cfg.Matching.DefaultThreshold)
		assert.Equal(t, 20, cfg.Matching.DefaultLimit)
		assert.Equal(t, 0.1, cfg.Matching.FallbackThreshold)
		assert.Equal(t, 3*time.Second, cfg.Matching.SearchTimeout)
		assert.Equal(t, 4*time.Second, cfg.Enrichment.ItemTimeout)
		require.Len(t, cfg.Matching.ReplenishAttempts, 3)
		assert.Equal(t, ReplenishAttempt{Threshold: 0.3, Count: 20}, cfg.Matching.ReplenishAttempts[0])
		assert.Equal(t, 300*time.Millisecond, cfg.Seeder.RateInterval)
	})

	t.Run("环境配置覆盖", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("APP_ENV", "staging")
		writeConfig(t, dir, "config.yaml", "vector:\n  backend: milvus\n")
		writeConfig(t, dir, "config.staging.yaml", "vector:\n  backend: memory\n")

		cfg, err := LoadFrom(dir)
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.Vector.Backend)
	})

	t.Run("非法后端", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("APP_ENV", "unit")
		writeConfig(t, dir, "config.yaml", "vector:\n  backend: faiss\n")

		_, err := LoadFrom(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vector.backend")
	})

	t.Run("缺少主配置文件", func(t *testing.T) {
		_, err := LoadFrom(t.TempDir())
		assert.Error(t, err)
	})
}
