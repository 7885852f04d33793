package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/BaSui01/imagegate/internal/ctxkeys"
	"github.com/BaSui01/imagegate/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// 编辑请求中源图像使用的文件名，扩展名提示 Provider 按 PNG 处理
const editImageName = "image.png"

// Recorder 记录 Provider 调用指标
type Recorder interface {
	RecordImageRequest(provider, model, operation, status string, duration time.Duration)
}

// Adapter 把 Provider 的 base64 结果解码为原始图像字节。
//
// 每次调用都是一次独立的上游请求：无重试、无缓存、无额外超时。
type Adapter struct {
	provider Provider
	model    string
	recorder Recorder
	tracer   trace.Tracer
	logger   *zap.Logger
}

// AdapterOption 配置 Adapter
type AdapterOption func(*Adapter)

// WithRecorder 设置指标记录器
func WithRecorder(r Recorder) AdapterOption {
	return func(a *Adapter) { a.recorder = r }
}

// WithModel 覆盖请求使用的模型，留空则由 Provider 决定
func WithModel(model string) AdapterOption {
	return func(a *Adapter) { a.model = model }
}

// NewAdapter 创建 Adapter
func NewAdapter(provider Provider, logger *zap.Logger, opts ...AdapterOption) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		provider: provider,
		tracer:   otel.Tracer("imagegate/image"),
		logger:   logger.With(zap.String("component", "image_adapter")),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SupportedSizes 返回底层 Provider 支持的尺寸
func (a *Adapter) SupportedSizes() []string {
	return a.provider.SupportedSizes()
}

// CreateImage 按给定尺寸生成一张图像并返回原始字节
func (a *Adapter) CreateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	ctx, span := a.tracer.Start(ctx, "image.create",
		trace.WithAttributes(
			attribute.String("image.provider", a.provider.Name()),
			attribute.String("image.size", size),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := a.provider.Generate(ctx, &GenerateRequest{
		Prompt: prompt,
		Model:  a.model,
		N:      1,
		Size:   size,
	})
	data, err := a.finish(ctx, span, "generate", start, resp, err)
	if err != nil {
		return nil, err
	}

	a.loggerFor(ctx).Info("image generated",
		zap.String("size", size),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return data, nil
}

// EditImage 以 prompt 编辑源图像并返回原始字节
func (a *Adapter) EditImage(ctx context.Context, prompt string, src []byte) ([]byte, error) {
	ctx, span := a.tracer.Start(ctx, "image.edit",
		trace.WithAttributes(
			attribute.String("image.provider", a.provider.Name()),
			attribute.Int("image.source_bytes", len(src)),
		),
	)
	defer span.End()

	// bytes.NewReader 的读取位置从 0 开始
	start := time.Now()
	resp, err := a.provider.Edit(ctx, &EditRequest{
		Image:     bytes.NewReader(src),
		ImageName: editImageName,
		Prompt:    prompt,
		Model:     a.model,
	})
	data, err := a.finish(ctx, span, "edit", start, resp, err)
	if err != nil {
		return nil, err
	}

	a.loggerFor(ctx).Info("image edited",
		zap.Int("source_bytes", len(src)),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return data, nil
}

// finish 统一处理调用结果：解码、记录指标与 span 状态
func (a *Adapter) finish(ctx context.Context, span trace.Span, op string, start time.Time, resp *GenerateResponse, callErr error) ([]byte, error) {
	var (
		data []byte
		err  = callErr
	)
	if err == nil {
		data, err = decodeFirst(resp)
	}

	status := "success"
	model := a.model
	if resp != nil && resp.Model != "" {
		model = resp.Model
	}
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.loggerFor(ctx).Warn("image provider call failed",
			zap.String("operation", op),
			zap.Error(err),
		)
	}
	if a.recorder != nil {
		a.recorder.RecordImageRequest(a.provider.Name(), model, op, status, time.Since(start))
	}

	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, err.Error()).
			WithCause(err).
			WithProvider(a.provider.Name())
	}
	return data, nil
}

// loggerFor 附带请求 ID（若有）
func (a *Adapter) loggerFor(ctx context.Context) *zap.Logger {
	if id, ok := ctxkeys.RequestID(ctx); ok {
		return a.logger.With(zap.String("request_id", id))
	}
	return a.logger
}

// decodeFirst 解码响应中第一张图像的 base64 数据
func decodeFirst(resp *GenerateResponse) ([]byte, error) {
	if resp == nil || len(resp.Images) == 0 {
		return nil, errors.New("provider returned no image data")
	}
	b64 := resp.Images[0].B64JSON
	if b64 == "" {
		return nil, errors.New("provider returned an image without b64_json payload")
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}
