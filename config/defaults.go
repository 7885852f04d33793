// =============================================================================
// 📦 imagegate 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Image:     DefaultImageConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8000,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    0,
		ShutdownTimeout: 15 * time.Second,
		MaxUploadBytes:  32 << 20, // 32 MB
	}
}

// DefaultImageConfig 返回默认图像 Provider 配置
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		BaseURL:     "https://api.openai.com",
		Model:       "gpt-image-1",
		Timeout:     0,
		DefaultSize: "1024x1024",
		StrictSize:  false,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "imagegate",
		SampleRate:   0.1,
	}
}
