package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// WorkspaceDirName is the per-project directory holding webdeck state.
	WorkspaceDirName = ".webdeck"
	// WorkspaceConfigFile is the YAML file read from inside that directory.
	WorkspaceConfigFile = "config.yaml"
	// MaxSearchDepth caps the upward walk during workspace discovery.
	MaxSearchDepth = 10
)

// Browser modes.
const (
	ModeChromium = "chromium"
	ModeChrome   = "chrome"
	ModeCDP      = "cdp"
)

// WorkspaceOptions adjusts how LoadWithWorkspace finds the workspace.
type WorkspaceOptions struct {
	// Disable skips discovery entirely.
	Disable bool
	// ExplicitDir names the workspace root directly instead of walking up.
	ExplicitDir string
}

// Config captures all tunable settings for webdeck.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Render  RenderConfig  `yaml:"render"`
	MCP     MCPConfig     `yaml:"mcp"`
	Journal JournalConfig `yaml:"journal"`
	Trace   TraceConfig   `yaml:"trace"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	LogFile string `yaml:"log_file"`
}

// BrowserConfig configures how the Rod browser comes up.
type BrowserConfig struct {
	// Mode selects the lifecycle: "chromium" launches a managed browser,
	// "chrome" runs the user's Chrome with an existing profile (keeps
	// logins), "cdp" attaches to an already-running instance.
	Mode string `yaml:"mode"`
	// Headless controls whether the managed browser runs headless (default: true).
	Headless *bool `yaml:"headless"`
	// Stealth controls whether the anti-automation patch is installed on
	// every new document (default: true).
	Stealth *bool `yaml:"stealth"`
	// ChromeBinary overrides the Chrome executable path for "chrome" mode.
	ChromeBinary string `yaml:"chrome_binary"`
	// ChromeUserData is the user-data-dir for "chrome" mode.
	ChromeUserData string `yaml:"chrome_user_data"`
	// ChromeProfile is the profile directory name for "chrome" mode (default: "Default").
	ChromeProfile string `yaml:"chrome_profile"`
	// CDPEndpoint is the devtools URL or host:port for "cdp" mode.
	CDPEndpoint string `yaml:"cdp_endpoint"`
	// DefaultNavigationTimeout bounds each navigation, e.g. "15s".
	DefaultNavigationTimeout string `yaml:"default_navigation_timeout"`
}

// RenderConfig caps the textual views of a page.
type RenderConfig struct {
	MaxLinks   int `yaml:"max_links"`
	MaxButtons int `yaml:"max_buttons"`
	MaxChars   int `yaml:"max_chars"`
}

type MCPConfig struct {
	// Transport selects how the MCP server listens: "stdio" (default) or "sse".
	Transport string `yaml:"transport"`
	// SSEAddr is the listen address for the SSE transport (default: ":8931").
	SSEAddr string `yaml:"sse_addr"`
}

// JournalConfig controls the embedded activity fact store.
type JournalConfig struct {
	Enable          *bool  `yaml:"enable"`
	RulesPath       string `yaml:"rules_path"`
	FactBufferLimit int    `yaml:"fact_buffer_limit"`
}

// TraceConfig controls the JSONL event trace.
type TraceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig provides reasonable defaults for local use.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:    "webdeck",
			Version: "0.1.0",
			LogFile: "webdeck-mcp.log",
		},
		Browser: BrowserConfig{
			Mode:                     ModeChromium,
			ChromeProfile:            "Default",
			DefaultNavigationTimeout: "15s",
		},
		Render: RenderConfig{
			MaxLinks:   25,
			MaxButtons: 15,
			MaxChars:   4000,
		},
		MCP: MCPConfig{
			Transport: "stdio",
			SSEAddr:   ":8931",
		},
		Journal: JournalConfig{
			FactBufferLimit: 2048,
		},
		Trace: TraceConfig{
			Enabled: false,
			Path:    "webdeck-trace",
		},
	}
}

// Load reads one YAML file over the built-in defaults and applies WEBDECK_*
// environment overrides. A .env in the working directory is honored first,
// best effort.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	_ = godotenv.Load()

	if path == "" {
		return cfg, errors.New("config path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg = applyEnv(cfg)
	return cfg, cfg.Validate()
}

// DiscoverWorkspace walks from startDir toward the filesystem root looking
// for a .webdeck/config.yaml, giving up after MaxSearchDepth levels. It
// returns the directory containing .webdeck/, or "" when nothing was found.
func DiscoverWorkspace(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	for depth := 0; depth < MaxSearchDepth; depth++ {
		if hasWorkspaceConfig(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

func hasWorkspaceConfig(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, WorkspaceDirName, WorkspaceConfigFile))
	return err == nil
}

// LoadWithWorkspace layers configuration sources, later layers winning:
// built-in defaults, then the workspace .webdeck/config.yaml, then the
// explicit -config file, then WEBDECK_* environment variables. It returns
// the merged config plus the workspace root, empty when none was used.
func LoadWithWorkspace(explicitConfig string, opts WorkspaceOptions) (Config, string, error) {
	cfg := DefaultConfig()
	_ = godotenv.Load()

	var wsDir string
	switch {
	case opts.Disable:
	case opts.ExplicitDir != "":
		if hasWorkspaceConfig(opts.ExplicitDir) {
			wsDir = opts.ExplicitDir
		}
	default:
		cwd, err := os.Getwd()
		if err != nil {
			return cfg, "", fmt.Errorf("getting working directory: %w", err)
		}
		if wsDir, err = DiscoverWorkspace(cwd); err != nil {
			return cfg, "", fmt.Errorf("discovering workspace: %w", err)
		}
	}

	if wsDir != "" {
		wsConfig := filepath.Join(wsDir, WorkspaceDirName, WorkspaceConfigFile)
		if err := mergeYAMLFile(&cfg, wsConfig, "workspace config"); err != nil {
			return cfg, "", err
		}
		cfg = resolveWorkspacePaths(cfg, wsDir)
	}
	if explicitConfig != "" {
		if err := mergeYAMLFile(&cfg, explicitConfig, "explicit config"); err != nil {
			return cfg, wsDir, err
		}
	}

	cfg = applyEnv(cfg)
	return cfg, wsDir, cfg.Validate()
}

// mergeYAMLFile overlays one YAML file onto cfg in place.
func mergeYAMLFile(cfg *Config, path, layer string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", layer, path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parsing %s %s: %w", layer, path, err)
	}
	return nil
}

// applyEnv overlays WEBDECK_* environment variables on top of file values.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("WEBDECK_BROWSER_MODE"); v != "" {
		cfg.Browser.Mode = v
	}
	if v := os.Getenv("WEBDECK_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Browser.Headless = &b
		}
	}
	if v := os.Getenv("WEBDECK_STEALTH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Browser.Stealth = &b
		}
	}
	if v := os.Getenv("WEBDECK_CHROME_USER_DATA"); v != "" {
		cfg.Browser.ChromeUserData = v
	}
	if v := os.Getenv("WEBDECK_CHROME_PROFILE"); v != "" {
		cfg.Browser.ChromeProfile = v
	}
	if v := os.Getenv("WEBDECK_CDP_ENDPOINT"); v != "" {
		cfg.Browser.CDPEndpoint = v
	}
	return cfg
}

// resolveWorkspacePaths anchors relative file paths from a workspace config
// to the workspace root, so the server behaves the same from any cwd.
func resolveWorkspacePaths(cfg Config, wsDir string) Config {
	for _, p := range []*string{&cfg.Server.LogFile, &cfg.Journal.RulesPath, &cfg.Trace.Path} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(wsDir, *p)
		}
	}
	return cfg
}

// Validate rejects configs the server could not start with.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	switch mode := c.Browser.Mode; mode {
	case "", ModeChromium, ModeChrome:
	case ModeCDP:
		if c.Browser.CDPEndpoint == "" {
			return errors.New("browser.cdp_endpoint is required when browser.mode is cdp")
		}
	default:
		return fmt.Errorf("browser.mode must be one of %s|%s|%s, got %q",
			ModeChromium, ModeChrome, ModeCDP, mode)
	}
	switch c.MCP.Transport {
	case "", "stdio", "sse":
	default:
		return fmt.Errorf("mcp.transport must be stdio or sse, got %q", c.MCP.Transport)
	}
	return nil
}

// GetMode returns the browser mode with the default filled in.
func (b BrowserConfig) GetMode() string {
	if b.Mode == "" {
		return ModeChromium
	}
	return b.Mode
}

// IsHeadless returns whether the managed browser runs headless (default: true).
func (b BrowserConfig) IsHeadless() bool {
	if b.Headless == nil {
		return true
	}
	return *b.Headless
}

// IsStealth returns whether the anti-automation patch is applied (default: true).
func (b BrowserConfig) IsStealth() bool {
	if b.Stealth == nil {
		return true
	}
	return *b.Stealth
}

// GetChromeProfile returns the Chrome profile name with a sane default.
func (b BrowserConfig) GetChromeProfile() string {
	if b.ChromeProfile == "" {
		return "Default"
	}
	return b.ChromeProfile
}

// NavigationTimeout parses the configured navigation timeout, falling back
// to 15s when unset or malformed.
func (b BrowserConfig) NavigationTimeout() time.Duration {
	if d, err := time.ParseDuration(b.DefaultNavigationTimeout); err == nil {
		return d
	}
	return 15 * time.Second
}

// GetTransport returns the MCP transport with the default filled in.
func (m MCPConfig) GetTransport() string {
	if m.Transport == "" {
		return "stdio"
	}
	return m.Transport
}

// GetSSEAddr returns the SSE listen address with a sane default.
func (m MCPConfig) GetSSEAddr() string {
	if m.SSEAddr == "" {
		return ":8931"
	}
	return m.SSEAddr
}

// IsEnabled returns whether the activity journal records facts (default: true).
func (j JournalConfig) IsEnabled() bool {
	if j.Enable == nil {
		return true
	}
	return *j.Enable
}

// GetFactBufferLimit returns the journal buffer cap with a sane default.
func (j JournalConfig) GetFactBufferLimit() int {
	if j.FactBufferLimit <= 0 {
		return 2048
	}
	return j.FactBufferLimit
}
