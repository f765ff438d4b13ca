// Package ops loads the host binary's JSON configuration.
package ops

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yanun0323/errors"

	"main/internal/executor"
	"main/internal/feed"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Feed        FeedConfig      `json:"feed"`
	Executor    ExecutorConfig  `json:"executor"`
	Audit       AuditConfig     `json:"audit"`
	Profiling   ProfilingConfig `json:"profiling"`
	MetricsAddr string          `json:"metricsAddr"`
}

// FeedConfig describes the tick feed connection.
type FeedConfig struct {
	URL                  string `json:"url"`
	RequestCode          int    `json:"requestCode"`
	MaxReconnectAttempts int    `json:"maxReconnectAttempts"`
	ReconnectBaseDelayMs int    `json:"reconnectBaseDelayMs"`
	HeartbeatIntervalMs  int    `json:"heartbeatIntervalMs"`
}

// ExecutorConfig bounds the order-action executor.
type ExecutorConfig struct {
	ConfirmAttempts   int   `json:"confirmAttempts"`
	ConfirmIntervalMs int   `json:"confirmIntervalMs"`
	PricePrecision    int32 `json:"pricePrecision"`
}

// AuditConfig enables the Postgres execution-log sink when a
// connection string is present.
type AuditConfig struct {
	Postgres string `json:"postgres"`
}

// ProfilingConfig enables Pyroscope when an address is present.
type ProfilingConfig struct {
	PyroscopeAddr string `json:"pyroscopeAddr"`
	AppName       string `json:"appName"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Feed        feed.Config
	Executor    executor.Config
	Audit       AuditConfig
	Profiling   ProfilingConfig
	MetricsAddr string
}

// Load reads and resolves a JSON config file.
func Load(path string) (Loaded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}

	var file FileConfig
	if err := json.Unmarshal(raw, &file); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config")
	}
	return Resolve(file)
}

// Resolve turns the file layout into runtime configs. Zero-valued
// fields fall back to the component defaults.
func Resolve(file FileConfig) (Loaded, error) {
	if file.Feed.URL == "" {
		return Loaded{}, errors.New("config: feed.url is required")
	}

	loaded := Loaded{
		Feed: feed.Config{
			URL:                  file.Feed.URL,
			RequestCode:          file.Feed.RequestCode,
			MaxReconnectAttempts: file.Feed.MaxReconnectAttempts,
			ReconnectBaseDelay:   time.Duration(file.Feed.ReconnectBaseDelayMs) * time.Millisecond,
			HeartbeatInterval:    time.Duration(file.Feed.HeartbeatIntervalMs) * time.Millisecond,
		},
		Executor: executor.Config{
			ConfirmAttempts: file.Executor.ConfirmAttempts,
			ConfirmInterval: time.Duration(file.Executor.ConfirmIntervalMs) * time.Millisecond,
			PricePrecision:  file.Executor.PricePrecision,
		},
		Audit:       file.Audit,
		Profiling:   file.Profiling,
		MetricsAddr: file.MetricsAddr,
	}
	if loaded.MetricsAddr == "" {
		loaded.MetricsAddr = ":9100"
	}
	if loaded.Profiling.AppName == "" {
		loaded.Profiling.AppName = "order-protection-guard"
	}
	return loaded, nil
}
