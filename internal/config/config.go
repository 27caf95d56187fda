package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// DefaultPort is used when neither PORT nor WORKSPACE_MCP_PORT is set.
const DefaultPort = 8000

// DefaultHost is the bind address of the HTTP listener.
const DefaultHost = "0.0.0.0"

// TransportStreamableHTTP is the only transport the HTTP entry point runs.
const TransportStreamableHTTP = "streamable-http"

// AuthMode selects how Google credentials reach the tool handlers.
type AuthMode string

const (
	// AuthModeStateless uses the bearer token of each request and persists nothing.
	AuthModeStateless AuthMode = "stateless"

	// AuthModeFile persists one credential file per user in the credentials directory.
	AuthModeFile AuthMode = "file"

	// AuthModeSession keeps credentials in a session store (memory or redis).
	AuthModeSession AuthMode = "session"
)

// Config is the process configuration decoded from the environment.
type Config struct {
	// ToolTier selects a tool tier (core, extended, complete). Empty means no tier.
	ToolTier string `env:"TOOL_TIER"`

	// Tools is the raw services filter, comma and/or space separated.
	Tools string `env:"TOOLS"`

	// Port and WorkspacePort are resolved by ResolvePort in that order.
	Port          string `env:"PORT"`
	WorkspacePort string `env:"WORKSPACE_MCP_PORT"`

	Host        string `env:"WORKSPACE_MCP_HOST,default=0.0.0.0"`
	BaseURI     string `env:"WORKSPACE_MCP_BASE_URI,default=http://localhost"`
	ExternalURL string `env:"WORKSPACE_EXTERNAL_URL"`

	AuthModeName   string `env:"WORKSPACE_MCP_AUTH_MODE,default=file"`
	StatelessMode  bool   `env:"WORKSPACE_MCP_STATELESS_MODE,default=false"`
	CredentialsDir string `env:"WORKSPACE_MCP_CREDENTIALS_DIR"`

	ReadOnly      bool   `env:"WORKSPACE_MCP_READ_ONLY,default=false"`
	ToolTiersFile string `env:"WORKSPACE_MCP_TOOL_TIERS_FILE"`

	LogFile   string `env:"WORKSPACE_MCP_LOG_FILE"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	Google    GoogleConfig
	Session   SessionConfig
	Search    SearchConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
}

// GoogleConfig holds the Google OAuth client used by the OAuth proxy and for token refresh.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURI  string `env:"GOOGLE_OAUTH_REDIRECT_URI"`
}

// SessionConfig configures the session store used in session auth mode.
type SessionConfig struct {
	// Store is "memory" or "redis".
	Store         string        `env:"WORKSPACE_MCP_SESSION_STORE,default=memory"`
	RedisAddr     string        `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB,default=0"`
	KeyPrefix     string        `env:"SESSION_KEY_PREFIX,default=workspace-mcp:"`
	TTL           time.Duration `env:"SESSION_TTL,default=24h"`
}

// SearchConfig holds the Programmable Search Engine credentials.
type SearchConfig struct {
	APIKey   string `env:"GOOGLE_PSE_API_KEY"`
	EngineID string `env:"GOOGLE_PSE_ENGINE_ID"`
}

// MetricsConfig configures the dedicated metrics listener.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED,default=false"`
	Addr    string `env:"METRICS_ADDR,default=:9090"`
}

// RateLimitConfig configures per-IP rate limiting on the OAuth endpoints.
type RateLimitConfig struct {
	Rate       int  `env:"RATE_LIMIT_RATE,default=10"`
	Burst      int  `env:"RATE_LIMIT_BURST,default=20"`
	TrustProxy bool `env:"TRUST_PROXY,default=false"`
}

// Load reads an optional .env file and decodes the environment into a Config.
//
// WORKSPACE_MCP_ENV_FILE names the dotenv file; without it a ".env" in the
// working directory is loaded when present. Values already in the environment
// are never overridden.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	if file := strings.TrimSpace(os.Getenv("WORKSPACE_MCP_ENV_FILE")); file != "" {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}

// Normalize trims and lowercases selectors, applies the stateless override
// and fills defaults. Call it again after changing fields.
func (c *Config) Normalize() error {
	c.ToolTier = strings.ToLower(strings.TrimSpace(c.ToolTier))
	c.Tools = strings.TrimSpace(c.Tools)
	c.AuthModeName = strings.ToLower(strings.TrimSpace(c.AuthModeName))

	if c.StatelessMode {
		c.AuthModeName = string(AuthModeStateless)
	}
	switch AuthMode(c.AuthModeName) {
	case AuthModeStateless, AuthModeFile, AuthModeSession:
	case "":
		c.AuthModeName = string(AuthModeFile)
	default:
		return fmt.Errorf("invalid auth mode %q, must be one of: stateless, file, session", c.AuthModeName)
	}

	if c.CredentialsDir == "" {
		c.CredentialsDir = DefaultCredentialsDir()
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	c.BaseURI = strings.TrimRight(c.BaseURI, "/")
	c.ExternalURL = strings.TrimRight(strings.TrimSpace(c.ExternalURL), "/")
	return nil
}

// AuthMode returns the normalized auth mode.
func (c *Config) AuthMode() AuthMode {
	return AuthMode(c.AuthModeName)
}

// Stateless reports whether the server runs without any credential persistence.
func (c *Config) Stateless() bool {
	return c.AuthMode() == AuthModeStateless
}

// Tier returns the tool tier, or "" when none is configured.
func (c *Config) Tier() string {
	return c.ToolTier
}

// Services returns the services filter parsed from TOOLS, or nil when unset.
func (c *Config) Services() []string {
	return SplitServices(c.Tools)
}

// ListenPort resolves the listener port from PORT and WORKSPACE_MCP_PORT.
func (c *Config) ListenPort() (int, error) {
	return ResolvePort(c.Port, c.WorkspacePort)
}

// ListenAddr returns host:port for the HTTP listener.
func (c *Config) ListenAddr() (string, error) {
	port, err := c.ListenPort()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", c.Host, port), nil
}

// PublicURL is the externally reachable base URL of the server.
// WORKSPACE_EXTERNAL_URL wins; otherwise it is the base URI joined with the port.
func (c *Config) PublicURL() string {
	if c.ExternalURL != "" {
		return c.ExternalURL
	}
	port, err := c.ListenPort()
	if err != nil {
		port = DefaultPort
	}
	return fmt.Sprintf("%s:%d", c.BaseURI, port)
}

// RedirectURI is the OAuth callback registered with Google.
func (c *Config) RedirectURI() string {
	if c.Google.RedirectURI != "" {
		return c.Google.RedirectURI
	}
	return c.PublicURL() + "/oauth2callback"
}

// SplitServices splits a services list on commas and whitespace.
// Entries are trimmed and empties dropped; an empty result is nil.
func SplitServices(raw string) []string {
	fields := strings.Fields(strings.ReplaceAll(raw, ",", " "))
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ResolvePort returns the first non-empty of port and fallback as a TCP port,
// or DefaultPort when both are empty.
func ResolvePort(port, fallback string) (int, error) {
	raw := strings.TrimSpace(port)
	if raw == "" {
		raw = strings.TrimSpace(fallback)
	}
	if raw == "" {
		return DefaultPort, nil
	}

	p, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", raw, err)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", p)
	}
	return p, nil
}

// DefaultCredentialsDir is ~/.google_workspace_mcp/credentials, or a relative
// .credentials directory when the home directory cannot be determined.
func DefaultCredentialsDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".credentials"
	}
	return filepath.Join(home, ".google_workspace_mcp", "credentials")
}
