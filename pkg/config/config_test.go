package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := fromViper(newTestViper(nil))

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, VisibilityHideClosed, cfg.Events.Visibility)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Auth.RoleMemoTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.Storage.MaxImageBytes)
	assert.Contains(t, cfg.Storage.AllowedMIMEs, "image/png")
}

func TestFromViperVisibilityPolicy(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{"EVENTS_VISIBILITY": "MARK"}))
	assert.Equal(t, VisibilityMarkClosed, cfg.Events.Visibility)

	cfg = fromViper(newTestViper(map[string]interface{}{"EVENTS_VISIBILITY": "bogus"}))
	assert.Equal(t, VisibilityHideClosed, cfg.Events.Visibility)
}

func TestFromViperTrimsURLs(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{
		"AUTH_BACKEND_URL":        "https://project.example.co/auth/v1/",
		"STORAGE_PUBLIC_BASE_URL": "https://cdn.example.co/public/",
		"ALLOWED_ORIGINS":         " http://a.test , ,http://b.test",
	}))
	assert.Equal(t, "https://project.example.co/auth/v1", cfg.Auth.BackendURL)
	assert.Equal(t, "https://cdn.example.co/public", cfg.Storage.PublicBaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestEventsLocation(t *testing.T) {
	require.Equal(t, time.UTC, EventsConfig{}.Location())
	require.Equal(t, time.UTC, EventsConfig{Timezone: "Not/AZone"}.Location())
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}
