package config

import (
	"os"
	"time"

	"github.com/ipfs-force-community/metrics"
	"github.com/pelletier/go-toml"

	"github.com/ipfs-force-community/wallet-hub/types"
)

const (
	// Configuration file name
	ConfigFile = "config.toml"
)

type Config struct {
	API     *APIConfig
	Request *RequestConfig
	Metrics *metrics.MetricsConfig
	Trace   *metrics.TraceConfig
}

type APIConfig struct {
	ListenAddress string
}

// RequestConfig bounds the in-flight requests the hub keeps per provider
// channel.
type RequestConfig struct {
	QueueSize     int
	Timeout       time.Duration
	ClearInterval time.Duration
}

func (c *RequestConfig) Stream() *types.RequestConfig {
	return &types.RequestConfig{
		RequestQueueSize: c.QueueSize,
		RequestTimeout:   c.Timeout,
		ClearInterval:    c.ClearInterval,
	}
}

func DefaultConfig() *Config {
	cfg := &Config{
		API: &APIConfig{ListenAddress: "/ip4/127.0.0.1/tcp/45132"},
		Request: &RequestConfig{
			QueueSize:     30,
			Timeout:       time.Minute * 5,
			ClearInterval: time.Minute * 5,
		},
		Metrics: metrics.DefaultMetricsConfig(),
		Trace:   metrics.DefaultTraceConfig(),
	}
	namespace := "wallet_hub"
	cfg.Metrics.Exporter.Prometheus.Namespace = namespace
	cfg.Metrics.Exporter.Graphite.Namespace = namespace
	cfg.Metrics.Exporter.Prometheus.EndPoint = "/ip4/0.0.0.0/tcp/4569"
	cfg.Metrics.Exporter.Graphite.Port = 4569
	cfg.Trace.ServerName = "wallet-hub"
	cfg.Trace.JaegerEndpoint = ""

	return cfg
}

func ReadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = toml.Unmarshal(data, cfg)

	return cfg, err
}

func WriteConfig(filePath string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(filePath, data, 0644)
}
