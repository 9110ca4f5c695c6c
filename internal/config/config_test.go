package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir, which needs Go 1.24+; this toolchain is older.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeConfig(t *testing.T, yaml string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	chdir(t, dir)
}

const baseYAML = `
app:
  env: development
  port: 8085
mongo:
  uri: mongodb://localhost:27017
  db: matchdb
redis:
  addr: localhost:6379
kafka:
  brokers: ["localhost:9092"]
jwt:
  alg: HS256
  hs_secret: test-secret
`

func TestLoadFromYAMLWithDefaults(t *testing.T) {
	writeConfig(t, baseYAML)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.App.Port)
	assert.Equal(t, "8085", cfg.App.PortString())
	assert.Equal(t, "matchdb", cfg.Mongo.DB)

	// untouched knobs take defaults
	assert.Equal(t, "ws", cfg.Redis.Prefix)
	assert.Equal(t, "realtime-events", cfg.Kafka.EventsTopic)
	assert.Equal(t, "match-service", cfg.Kafka.GroupID)
	assert.Equal(t, 25*time.Second, cfg.PingInterval)
	assert.Equal(t, 10*time.Second, cfg.WriteDeadline)
	assert.Equal(t, int64(65536), cfg.WS.MaxMessageSizeBytes)
	assert.Equal(t, 2000, cfg.Chat.MaxMessageChars)
	assert.Equal(t, 50, cfg.Chat.HistoryLimit)
}

func TestEnvOverridesYAML(t *testing.T) {
	writeConfig(t, baseYAML)
	t.Setenv("SERVICE_PORT", "9100")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("MONGO_NAME", "override")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKER", "k1:9092,k2:9092")
	t.Setenv("KAFKA_EVENTS_TOPIC", "events-v2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.App.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "override", cfg.Mongo.DB)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "events-v2", cfg.Kafka.EventsTopic)
}

func TestLoadFromEnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVICE_PORT", "8085")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_NAME", "matchdb")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	t.Setenv("JWT_ALG", "HS256")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.JWT.HSSecret)
}

func TestEncryptionKeyValidation(t *testing.T) {
	writeConfig(t, baseYAML)

	t.Run("valid key accepted", func(t *testing.T) {
		t.Setenv("CHAT_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(make([]byte, 32)))
		cfg, err := Load()
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.Chat.EncryptionKey)
	})

	t.Run("wrong length rejected", func(t *testing.T) {
		t.Setenv("CHAT_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(make([]byte, 16)))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "encryption_key")
	})

	t.Run("bad base64 rejected", func(t *testing.T) {
		t.Setenv("CHAT_ENCRYPTION_KEY", "%%%not-base64%%%")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("absent key means plaintext storage", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.Chat.EncryptionKey)
	})
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"missing port", `
mongo: {uri: m, db: d}
redis: {addr: r}
kafka: {brokers: [k]}
jwt: {alg: HS256, hs_secret: s}
`, "app.port"},
		{"missing mongo uri", `
app: {port: 8085}
mongo: {db: d}
redis: {addr: r}
kafka: {brokers: [k]}
jwt: {alg: HS256, hs_secret: s}
`, "mongo.uri"},
		{"missing redis addr", `
app: {port: 8085}
mongo: {uri: m, db: d}
kafka: {brokers: [k]}
jwt: {alg: HS256, hs_secret: s}
`, "redis.addr"},
		{"missing brokers", `
app: {port: 8085}
mongo: {uri: m, db: d}
redis: {addr: r}
jwt: {alg: HS256, hs_secret: s}
`, "kafka.brokers"},
		{"bad jwt alg", `
app: {port: 8085}
mongo: {uri: m, db: d}
redis: {addr: r}
kafka: {brokers: [k]}
jwt: {alg: none}
`, "jwt.alg"},
		{"rs256 without key", `
app: {port: 8085}
mongo: {uri: m, db: d}
redis: {addr: r}
kafka: {brokers: [k]}
jwt: {alg: RS256}
`, "public_key_path"},
		{"hs256 without secret", `
app: {port: 8085}
mongo: {uri: m, db: d}
redis: {addr: r}
kafka: {brokers: [k]}
jwt: {alg: HS256}
`, "hs_secret"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			writeConfig(t, tc.yaml)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
