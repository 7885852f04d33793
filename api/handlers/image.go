package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BaSui01/imagegate/api"
	"github.com/BaSui01/imagegate/types"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	// DefaultSize 未指定 size 时使用的尺寸
	DefaultSize = "1024x1024"

	// defaultMaxUploadBytes multipart 上传上限
	defaultMaxUploadBytes int64 = 32 << 20

	msgPromptRequired = "Prompt is required."
	msgImageRequired  = "Image file is required."
)

// =============================================================================
// 🖼️ 图像接口 Handler
// =============================================================================

// ImageService 是处理器依赖的图像能力，由 image.Adapter 实现
type ImageService interface {
	CreateImage(ctx context.Context, prompt, size string) ([]byte, error)
	EditImage(ctx context.Context, prompt string, src []byte) ([]byte, error)
}

// ImageHandler 图像生成与编辑处理器
type ImageHandler struct {
	service        ImageService
	logger         *zap.Logger
	defaultSize    string
	allowedSizes   []string
	maxUploadBytes int64
}

// ImageHandlerOption 配置 ImageHandler
type ImageHandlerOption func(*ImageHandler)

// WithDefaultSize 设置缺省尺寸
func WithDefaultSize(size string) ImageHandlerOption {
	return func(h *ImageHandler) {
		if size != "" {
			h.defaultSize = size
		}
	}
}

// WithAllowedSizes 启用本地尺寸校验，nil 表示原样转发给 Provider
func WithAllowedSizes(sizes []string) ImageHandlerOption {
	return func(h *ImageHandler) { h.allowedSizes = sizes }
}

// WithMaxUploadBytes 设置 multipart 上传上限
func WithMaxUploadBytes(n int64) ImageHandlerOption {
	return func(h *ImageHandler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewImageHandler 创建图像处理器
func NewImageHandler(service ImageService, logger *zap.Logger, opts ...ImageHandlerOption) *ImageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ImageHandler{
		service:        service,
		logger:         logger,
		defaultSize:    DefaultSize,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleGenerate 处理文生图请求
// @Summary 生成图像
// @Description 根据提示词生成一张图像
// @Tags 图像
// @Accept json
// @Produce json
// @Param request body api.GenerateImageRequest true "生成请求"
// @Success 200 {object} api.ImageResponse "base64 图像"
// @Failure 400 {object} api.ErrorResponse "无效请求"
// @Failure 500 {object} api.ErrorResponse "Provider 或内部错误"
// @Router /api/generate [post]
func (h *ImageHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, h.logger) {
		return
	}

	var req api.GenerateImageRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		WriteError(w, types.NewError(types.ErrInvalidRequest, msgPromptRequired), h.logger)
		return
	}

	size := lo.Ternary(req.Size != "", req.Size, h.defaultSize)
	if h.allowedSizes != nil && !lo.Contains(h.allowedSizes, size) {
		msg := fmt.Sprintf("Unsupported size %q, expected one of: %s", size, strings.Join(h.allowedSizes, ", "))
		WriteError(w, types.NewError(types.ErrInvalidRequest, msg), h.logger)
		return
	}

	start := time.Now()
	data, err := h.service.CreateImage(r.Context(), req.Prompt, size)
	if err != nil {
		WriteError(w, ToAPIError(err), h.logger)
		return
	}

	h.logger.Info("image generate",
		requestIDField(r),
		zap.String("size", size),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	h.logger.Debug("image generate prompt", zap.String("prompt", req.Prompt))

	WriteJSON(w, http.StatusOK, api.ImageResponse{Image: EncodeImage(data)})
}

// HandleEdit 处理图像编辑请求
// @Summary 编辑图像
// @Description 根据提示词编辑上传的图像
// @Tags 图像
// @Accept mpfd
// @Produce json
// @Param prompt formData string true "编辑提示词"
// @Param image formData file true "源图像"
// @Success 200 {object} api.ImageResponse "base64 图像"
// @Failure 400 {object} api.ErrorResponse "无效请求"
// @Failure 500 {object} api.ErrorResponse "Provider 或内部错误"
// @Router /api/edit [post]
func (h *ImageHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, h.logger) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg := fmt.Sprintf("Upload exceeds %d bytes.", tooLarge.Limit)
			WriteError(w, types.NewError(types.ErrPayloadTooLarge, msg).WithCause(err), h.logger)
			return
		}
		WriteError(w, types.NewError(types.ErrInvalidRequest, "invalid multipart form: "+err.Error()).WithCause(err), h.logger)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	prompt := r.FormValue("prompt")
	if strings.TrimSpace(prompt) == "" {
		WriteError(w, types.NewError(types.ErrInvalidRequest, msgPromptRequired), h.logger)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, types.NewError(types.ErrInvalidRequest, msgImageRequired).WithCause(err), h.logger)
		return
	}
	defer file.Close()

	// 完整读入内存后再调用 Provider
	src, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, ToAPIError(fmt.Errorf("failed to read uploaded image: %w", err)), h.logger)
		return
	}

	start := time.Now()
	data, err := h.service.EditImage(r.Context(), prompt, src)
	if err != nil {
		WriteError(w, ToAPIError(err), h.logger)
		return
	}

	h.logger.Info("image edit",
		requestIDField(r),
		zap.String("filename", header.Filename),
		zap.Int("source_bytes", len(src)),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	h.logger.Debug("image edit prompt", zap.String("prompt", prompt))

	WriteJSON(w, http.StatusOK, api.ImageResponse{Image: EncodeImage(data)})
}
