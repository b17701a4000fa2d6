package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Вспомогательные хелперы.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// Полный корректный YAML с заданными значениями (не зависящими от дефолтов).
const sampleYAML = `
env: "prod"
http:
  host: "127.0.0.1"
  port: "9000"
  base_path: "/api"
auth:
  access_token_secret: "access-secret"
  refresh_token_secret: "refresh-secret"
  access_token_ttl: "10m"
  refresh_token_ttl: "240h"
  issuer: "issuerX"
  bcrypt_cost: 12
cookies:
  secure: false
  same_site: "strict"
db:
  url: "mongodb://localhost:27017/market"
s3:
  endpoint: "http://localhost:9000"
  root_user: "root"
  root_password: "rootpass"
  bucket: "market"
  public_base_url: "http://cdn.local/market"
uploads:
  max_size_bytes: 1024
  allowed_content_types: ["image/png"]
limits:
  default: 5
  max: 50
timeouts:
  service: "3s"
`

// Минимально валидный YAML (только обязательные поля).
const minimalYAML = `
auth:
  access_token_secret: "a"
  refresh_token_secret: "r"
db:
  url: "mongodb://localhost/min"
s3:
  endpoint: "localhost:9000"
  root_user: "u"
  root_password: "p"
  bucket: "b"
`

// Некорректный YAML — для проверки ошибок парсинга.
const brokenYAML = `
auth:
  access_token_secret: [unclosed
`

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr())
	require.Equal(t, "/api", cfg.HTTP.BasePath)

	require.Equal(t, "access-secret", cfg.Auth.AccessTokenSecret)
	require.Equal(t, "refresh-secret", cfg.Auth.RefreshTokenSecret)
	require.Equal(t, 10*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 240*time.Hour, cfg.Auth.RefreshTokenTTL)
	require.Equal(t, "issuerX", cfg.Auth.Issuer)
	require.Equal(t, 12, cfg.Auth.BcryptCost)

	require.False(t, cfg.Cookies.Secure)
	require.Equal(t, http.SameSiteStrictMode, cfg.Cookies.SameSiteMode())

	require.Equal(t, "mongodb://localhost:27017/market", cfg.DB.URL)
	require.Equal(t, "market", cfg.S3.Bucket)
	require.Equal(t, "http://cdn.local/market", cfg.S3.PublicBaseURL)
	require.EqualValues(t, 1024, cfg.Uploads.MaxSizeBytes)
	require.Equal(t, []string{"image/png"}, cfg.Uploads.AllowedContentTypes)
	require.EqualValues(t, 5, cfg.Limits.Default)
	require.EqualValues(t, 50, cfg.Limits.Max)
	require.Equal(t, 3*time.Second, cfg.Timeouts.Service)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "min.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Env)
	require.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.True(t, cfg.Cookies.Secure)
	require.Equal(t, http.SameSiteLaxMode, cfg.Cookies.SameSiteMode())
	require.EqualValues(t, 5*1024*1024, cfg.Uploads.MaxSizeBytes)
	require.ElementsMatch(t, []string{"image/jpeg", "image/png", "image/webp"}, cfg.Uploads.AllowedContentTypes)
	require.Equal(t, "/api/v1", cfg.HTTP.BasePath)
}

func TestLoad_WithExplicitPath_FileDoesNotExist(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{
			name:  "same_secrets",
			extra: "auth:\n  access_token_secret: \"x\"\n  refresh_token_secret: \"x\"\n",
			want:  "must differ",
		},
		{
			name:  "access_ttl_not_shorter",
			extra: "auth:\n  access_token_secret: \"a\"\n  refresh_token_secret: \"r\"\n  access_token_ttl: \"200h\"\n",
			want:  "shorter",
		},
		{
			name:  "bcrypt_cost_too_low",
			extra: "auth:\n  access_token_secret: \"a\"\n  refresh_token_secret: \"r\"\n  bcrypt_cost: 4\n",
			want:  "bcrypt_cost",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			body := tt.extra + `
db:
  url: "mongodb://localhost/min"
s3:
  endpoint: "localhost:9000"
  root_user: "u"
  root_password: "p"
  bucket: "b"
`
			cfgPath := writeFile(t, t.TempDir(), "cfg.yaml", body)

			_, err := Load(cfgPath)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "from_env_path.yaml", minimalYAML)

	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost/min", cfg.DB.URL)
}

func TestLoad_EnvOverlaysYAML(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "cfg.yaml", minimalYAML)

	t.Setenv("ACCESS_TOKEN_EXPIRY", "30m")
	t.Setenv("MONGODB_URI", "mongodb://override/db")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Equal(t, "mongodb://override/db", cfg.DB.URL)
}

func TestLoad_WithLocalYAML_OK(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, ".", "local.yaml", sampleYAML)

	t.Setenv("CONFIG_PATH", "")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoad_EnvOnly_NoConfigInEnv_ReturnsDescriptiveError(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "config not found: provide --config, CONFIG_PATH, local.yaml or env vars")
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
