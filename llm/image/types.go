// 包图像提供统一的图像生成提供者接口.
package image

import (
	"context"
	"io"
	"time"
)

// 生成请求代表图像生成请求 。
type GenerateRequest struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model,omitempty"`
	N              int    `json:"n,omitempty"`               // Number of images
	Size           string `json:"size,omitempty"`            // 1024x1024, 1536x1024, 1024x1536, auto
	Quality        string `json:"quality,omitempty"`         // low, medium, high, auto
	ResponseFormat string `json:"response_format,omitempty"` // url, b64_json
}

// 生成响应(Generate Response)代表图像生成的响应.
type GenerateResponse struct {
	Provider  string      `json:"provider"`
	Model     string      `json:"model"`
	Images    []ImageData `json:"images"`
	Usage     ImageUsage  `json:"usage,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// ImageData代表生成的图像.
type ImageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// ImageUsage代表使用统计.
type ImageUsage struct {
	ImagesGenerated int `json:"images_generated"`
	InputTokens     int `json:"input_tokens,omitempty"`
	OutputTokens    int `json:"output_tokens,omitempty"`
}

// 编辑请求代表图像编辑请求 。
//
// ImageName 决定 multipart 文件名，Provider 依据扩展名推断内容类型。
type EditRequest struct {
	Image     io.Reader `json:"-"`
	ImageName string    `json:"-"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model,omitempty"`
	N         int       `json:"n,omitempty"`
	Size      string    `json:"size,omitempty"`
}

// 提供方定义了图像生成提供者接口.
type Provider interface {
	// 从文本提示生成图像 。
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// 编辑根据快讯修改已存在的图像。
	Edit(ctx context.Context, req *EditRequest) (*GenerateResponse, error)

	// 名称返回提供者名称 。
	Name() string

	// 支持的返回大小支持的图像大小 。
	SupportedSizes() []string
}
