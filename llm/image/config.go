package image

import "time"

// OpenAIConfig 配置 OpenAI 图像 Provider
type OpenAIConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"` // gpt-image-1, dall-e-3
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"` // 0 表示不设置客户端超时
}

// DefaultOpenAIConfig 返回默认 OpenAI 图像配置
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL: "https://api.openai.com",
		Model:   "gpt-image-1",
	}
}
