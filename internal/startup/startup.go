package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"video-library/internal/logging"

	"github.com/spf13/viper"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	VideoDir       string
	CacheDir       string
	Port           string
	MetricsPort    string
	MetricsEnabled bool

	// PublicPrefix is the URL path the video root is served under.
	PublicPrefix string
	// ThumbnailPrefix is the URL path the cache directory is served under.
	ThumbnailPrefix string

	ThumbnailOffset time.Duration
	ThumbnailWidth  int
	ThumbnailHeight int

	FFmpegPath     string
	FFprobePath    string
	FFmpegTimeout  time.Duration
	FFprobeTimeout time.Duration

	DefaultLimit    int
	FanoutWorkers   int
	CORSOrigins     []string
	CollectInterval time.Duration

	LogStaticFiles  bool
	LogHealthChecks bool

	// Feature flags based on directory and tool availability
	ThumbnailsEnabled bool
	FFmpegAvailable   bool
	FFprobeAvailable  bool
}

// Defaults for every configuration key.
var defaults = map[string]any{
	"VIDEO_DIR":                "/videos",
	"PORT":                     "5000",
	"METRICS_PORT":             "9090",
	"METRICS_ENABLED":          true,
	"PUBLIC_PREFIX":            "/videos",
	"THUMBNAIL_DIR_NAME":       "thumbnails",
	"THUMBNAIL_OFFSET":         "5s",
	"THUMBNAIL_WIDTH":          320,
	"THUMBNAIL_HEIGHT":         240,
	"FFMPEG_PATH":              "ffmpeg",
	"FFPROBE_PATH":             "ffprobe",
	"FFMPEG_TIMEOUT":           "30s",
	"FFPROBE_TIMEOUT":          "10s",
	"DEFAULT_LIMIT":            10,
	"FANOUT_WORKERS":           0,
	"CORS_ORIGINS":             "*",
	"METRICS_COLLECT_INTERVAL": "1m",
	"LOG_STATIC_FILES":         false,
	"LOG_HEALTH_CHECKS":        true,
}

// newViper returns a viper instance reading the environment, with defaults
// and the optional file named by CONFIG_FILE.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}
	return v, nil
}

// LoadConfig loads and validates configuration from environment variables
// and the optional CONFIG_FILE.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	section("CONFIGURATION")

	v, err := newViper()
	if err != nil {
		return nil, err
	}
	if file := v.ConfigFileUsed(); file != "" {
		logging.Info("  Config file:         %s", file)
	}
	return buildConfig(v)
}

// ReadConfig parses the same settings as LoadConfig without printing the
// startup report or touching the filesystem. Command-line tools use it to
// share the server's thumbnail settings.
func ReadConfig() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return parseConfig(v)
}

// parseConfig reads and validates every value in v. Paths are made
// absolute but not checked.
func parseConfig(v *viper.Viper) (*Config, error) {
	publicPrefix := "/" + strings.Trim(v.GetString("PUBLIC_PREFIX"), "/")
	thumbDirName := v.GetString("THUMBNAIL_DIR_NAME")

	config := &Config{
		Port:            v.GetString("PORT"),
		MetricsPort:     v.GetString("METRICS_PORT"),
		MetricsEnabled:  getBool(v, "METRICS_ENABLED"),
		PublicPrefix:    strings.TrimSuffix(publicPrefix, "/"),
		ThumbnailOffset: getDuration(v, "THUMBNAIL_OFFSET"),
		ThumbnailWidth:  getPositiveInt(v, "THUMBNAIL_WIDTH"),
		ThumbnailHeight: getPositiveInt(v, "THUMBNAIL_HEIGHT"),
		FFmpegPath:      v.GetString("FFMPEG_PATH"),
		FFprobePath:     v.GetString("FFPROBE_PATH"),
		FFmpegTimeout:   getPositiveDuration(v, "FFMPEG_TIMEOUT"),
		FFprobeTimeout:  getPositiveDuration(v, "FFPROBE_TIMEOUT"),
		DefaultLimit:    getPositiveInt(v, "DEFAULT_LIMIT"),
		FanoutWorkers:   v.GetInt("FANOUT_WORKERS"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		CollectInterval: getPositiveDuration(v, "METRICS_COLLECT_INTERVAL"),
		LogStaticFiles:  getBool(v, "LOG_STATIC_FILES"),
		LogHealthChecks: getBool(v, "LOG_HEALTH_CHECKS"),
	}

	if thumbDirName == "" || strings.ContainsAny(thumbDirName, `/\`) || thumbDirName == "." || thumbDirName == ".." {
		return nil, fmt.Errorf("THUMBNAIL_DIR_NAME must be a single path segment, got %q", thumbDirName)
	}
	config.ThumbnailPrefix = config.PublicPrefix + "/" + thumbDirName

	videoDir, err := filepath.Abs(v.GetString("VIDEO_DIR"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video directory path: %w", err)
	}
	config.VideoDir = videoDir
	config.CacheDir = filepath.Join(videoDir, thumbDirName)
	return config, nil
}

func buildConfig(v *viper.Viper) (*Config, error) {
	config, err := parseConfig(v)
	if err != nil {
		return nil, err
	}
	thumbDirName := filepath.Base(config.CacheDir)

	logging.Info("  VIDEO_DIR:           %s", v.GetString("VIDEO_DIR"))
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  PUBLIC_PREFIX:       %s", config.PublicPrefix)
	logging.Info("  THUMBNAIL_DIR_NAME:  %s", thumbDirName)
	logging.Info("  THUMBNAIL_OFFSET:    %v", config.ThumbnailOffset)
	logging.Info("  THUMBNAIL_SIZE:      %dx%d", config.ThumbnailWidth, config.ThumbnailHeight)
	logging.Info("  FFMPEG_TIMEOUT:      %v", config.FFmpegTimeout)
	logging.Info("  FFPROBE_TIMEOUT:     %v", config.FFprobeTimeout)
	logging.Info("  DEFAULT_LIMIT:       %d", config.DefaultLimit)
	logging.Info("  CORS_ORIGINS:        %s", strings.Join(config.CORSOrigins, ","))
	logging.Info("  LOG_STATIC_FILES:    %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	section("DIRECTORY SETUP")

	logging.Info("  Video directory (absolute): %s", config.VideoDir)
	logging.Info("  Thumbnail directory:        %s", config.CacheDir)

	// The video directory is expected to be mounted and is never created.
	// Queries against a missing root fail until it appears.
	if err := checkDirectory(config.VideoDir); err != nil {
		logging.Warn("  Video directory issue: %v", err)
		logging.Warn("  Thumbnails will be disabled")
	} else {
		config.ThumbnailsEnabled = setupOptionalDir(config.CacheDir, "thumbnails")
	}

	section("EXTERNAL TOOLS")

	config.FFmpegAvailable = logToolCheck("FFmpeg", config.FFmpegPath)
	config.FFprobeAvailable = logToolCheck("FFprobe", config.FFprobePath)

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Thumbnails:  %s", enabledString(config.ThumbnailsEnabled && config.FFmpegAvailable))
	logging.Info("    Durations:   %s", enabledString(config.FFprobeAvailable))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// getDuration parses key as a non-negative duration.
func getDuration(v *viper.Viper, key string) time.Duration {
	return parseDuration(v, key, 0)
}

// getPositiveDuration parses key as a duration greater than zero.
func getPositiveDuration(v *viper.Viper, key string) time.Duration {
	return parseDuration(v, key, 1)
}

func parseDuration(v *viper.Viper, key string, least time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d < least {
		def, _ := time.ParseDuration(defaults[key].(string))
		logging.Warn("  Invalid %s %q, using default: %v", key, raw, def)
		return def
	}
	return d
}

func getPositiveInt(v *viper.Viper, key string) int {
	n := v.GetInt(key)
	if n <= 0 {
		def := defaults[key].(int)
		logging.Warn("  Invalid %s %q, using default: %d", key, v.GetString(key), def)
		return def
	}
	return n
}

func getBool(v *viper.Viper, key string) bool {
	raw := strings.ToLower(strings.TrimSpace(v.GetString(key)))
	switch raw {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	}
	def := defaults[key].(bool)
	logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, raw, def)
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.Mkdir(path, 0o755); err != nil && !os.IsExist(err) {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	testFile := filepath.Join(path, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("    failed to remove test file %s: %v", testFile, err)
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func logToolCheck(name, path string) bool {
	version, err := checkTool(path)
	if err != nil {
		logging.Warn("  %s check failed: %v", name, err)
		return false
	}
	logging.Info("  [OK] %s is available", name)
	logging.Debug("       %s", version)
	return true
}

// checkDirectory verifies that path is an existing directory. It never
// creates it.
func checkDirectory(path string) error {
	logging.Debug("  Checking video directory: %s", path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	if logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			dirs := 0
			for _, e := range entries {
				if e.IsDir() {
					dirs++
				}
			}
			logging.Debug("    [OK] %d entries at top level, %d directories", len(entries), dirs)
		}
	}
	return nil
}

// checkTool runs "<path> -version" and returns the first line of output.
func checkTool(path string) (string, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, resolved, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", path, err)
	}

	first, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(first), nil
}
