package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/BaSui01/imagegate/internal/tlsutil"
	"go.uber.org/zap"
)

// OpenAIProvider使用OpenAI Images API执行图像生成与编辑.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *http.Client
	logger *zap.Logger
}

// 新OpenAIProvider创建了新的OpenAI图像提供商.
// cfg.Timeout 为 0 时不设置客户端超时，调用时长完全由上游决定。
func NewOpenAIProvider(cfg OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	defaults := DefaultOpenAIConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIProvider{
		cfg:    cfg,
		client: tlsutil.ProviderClient(cfg.Timeout),
		logger: logger.With(zap.String("provider", "openai-image")),
	}
}

func (p *OpenAIProvider) Name() string { return "openai-image" }

func (p *OpenAIProvider) SupportedSizes() []string {
	return []string{"1024x1024", "1536x1024", "1024x1536", "auto"}
}

type imagesRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type imagesResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		B64JSON       string `json:"b64_json,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

// 从文本提示生成图像 。
func (p *OpenAIProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	body := imagesRequest{
		Model:          model,
		Prompt:         req.Prompt,
		N:              req.N,
		Size:           req.Size,
		Quality:        req.Quality,
		ResponseFormat: req.ResponseFormat,
	}
	if body.N == 0 {
		body.N = 1
	}
	if body.Size == "" {
		body.Size = "1024x1024"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.endpoint("/v1/images/generations"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	p.logger.Debug("sending image generation request",
		zap.String("model", model),
		zap.String("size", body.Size),
		zap.Int("n", body.N),
	)

	iResp, err := p.do(httpReq, "generation")
	if err != nil {
		return nil, err
	}
	return p.toResponse(model, iResp), nil
}

// 编辑修改已存在的图像。
func (p *OpenAIProvider) Edit(ctx context.Context, req *EditRequest) (*GenerateResponse, error) {
	if req.Image == nil {
		return nil, fmt.Errorf("image is required")
	}
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	name := req.ImageName
	if name == "" {
		name = "image.png"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// 添加图像
	part, err := writer.CreatePart(imagePartHeader("image", name))
	if err != nil {
		return nil, fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := io.Copy(part, req.Image); err != nil {
		return nil, fmt.Errorf("failed to write image part: %w", err)
	}

	_ = writer.WriteField("prompt", req.Prompt)
	_ = writer.WriteField("model", model)
	if req.N > 0 {
		_ = writer.WriteField("n", fmt.Sprintf("%d", req.N))
	}
	if req.Size != "" {
		_ = writer.WriteField("size", req.Size)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.endpoint("/v1/images/edits"), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	p.logger.Debug("sending image edit request",
		zap.String("model", model),
		zap.String("image_name", name),
		zap.Int("body_bytes", buf.Len()),
	)

	iResp, err := p.do(httpReq, "edit")
	if err != nil {
		return nil, err
	}
	return p.toResponse(model, iResp), nil
}

func (p *OpenAIProvider) endpoint(path string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path
}

// do 发送请求并解码 Images API 响应，所有失败均原样向上返回
func (p *OpenAIProvider) do(httpReq *http.Request, op string) (*imagesResponse, error) {
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai image %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai image %s error: status=%d body=%s", op, resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var iResp imagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&iResp); err != nil {
		return nil, fmt.Errorf("failed to decode openai image %s response: %w", op, err)
	}
	return &iResp, nil
}

func (p *OpenAIProvider) toResponse(model string, iResp *imagesResponse) *GenerateResponse {
	images := make([]ImageData, len(iResp.Data))
	for i, d := range iResp.Data {
		images[i] = ImageData{
			URL:           d.URL,
			B64JSON:       d.B64JSON,
			RevisedPrompt: d.RevisedPrompt,
		}
	}

	usage := ImageUsage{ImagesGenerated: len(images)}
	if iResp.Usage != nil {
		usage.InputTokens = iResp.Usage.InputTokens
		usage.OutputTokens = iResp.Usage.OutputTokens
	}

	createdAt := time.Now()
	if iResp.Created > 0 {
		createdAt = time.Unix(iResp.Created, 0)
	}

	return &GenerateResponse{
		Provider:  p.Name(),
		Model:     model,
		Images:    images,
		Usage:     usage,
		CreatedAt: createdAt,
	}
}

// imagePartHeader 构造带图像内容类型的文件 part 头
func imagePartHeader(field, filename string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentTypeFor(filename))
	return h
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
