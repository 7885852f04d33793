package image

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/imagegate/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

// =============================================================================
// 🧪 模拟 Provider
// =============================================================================

type mockProvider struct {
	generateFunc func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	editFunc     func(ctx context.Context, req *EditRequest) (*GenerateResponse, error)
}

func (m *mockProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProvider) Edit(ctx context.Context, req *EditRequest) (*GenerateResponse, error) {
	if m.editFunc != nil {
		return m.editFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) SupportedSizes() []string { return []string{"1024x1024", "auto"} }

type recordedCall struct {
	provider, model, operation, status string
}

type mockRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *mockRecorder) RecordImageRequest(provider, model, operation, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{provider, model, operation, status})
}

func b64Response(data []byte) *GenerateResponse {
	return &GenerateResponse{
		Provider: "mock",
		Model:    "gpt-image-1",
		Images:   []ImageData{{B64JSON: base64.StdEncoding.EncodeToString(data)}},
	}
}

// =============================================================================
// 🧪 CreateImage
// =============================================================================

func TestAdapter_CreateImage_Success(t *testing.T) {
	want := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}
	var got *GenerateRequest

	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
			got = req
			return b64Response(want), nil
		},
	}
	rec := &mockRecorder{}
	a := NewAdapter(provider, zap.NewNop(), WithRecorder(rec))

	data, err := a.CreateImage(context.Background(), "a lighthouse", "1024x1536")
	require.NoError(t, err)
	assert.Equal(t, want, data)

	require.NotNil(t, got)
	assert.Equal(t, "a lighthouse", got.Prompt)
	assert.Equal(t, "1024x1536", got.Size)
	assert.Equal(t, 1, got.N)
	assert.Empty(t, got.Model)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, recordedCall{"mock", "gpt-image-1", "generate", "success"}, rec.calls[0])
}

func TestAdapter_CreateImage_WithModel(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
			assert.Equal(t, "dall-e-3", req.Model)
			return b64Response([]byte("x")), nil
		},
	}
	a := NewAdapter(provider, nil, WithModel("dall-e-3"))

	_, err := a.CreateImage(context.Background(), "p", "1024x1024")
	require.NoError(t, err)
}

func TestAdapter_CreateImage_Failures(t *testing.T) {
	tests := []struct {
		name     string
		resp     *GenerateResponse
		err      error
		contains string
	}{
		{name: "provider error", err: errors.New("openai image generation error: status=400 body=bad size"), contains: "status=400 body=bad size"},
		{name: "no data", resp: &GenerateResponse{}, contains: "no image data"},
		{name: "missing b64", resp: &GenerateResponse{Images: []ImageData{{URL: "https://example.com/a.png"}}}, contains: "without b64_json"},
		{name: "corrupt b64", resp: &GenerateResponse{Images: []ImageData{{B64JSON: "!!not-base64!!"}}}, contains: "failed to decode image payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{
				generateFunc: func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
					return tt.resp, tt.err
				},
			}
			rec := &mockRecorder{}
			a := NewAdapter(provider, zap.NewNop(), WithRecorder(rec))

			data, err := a.CreateImage(context.Background(), "p", "1024x1024")
			require.Error(t, err)
			assert.Nil(t, data)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))

			var apiErr *types.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "mock", apiErr.Provider)
			assert.NotEmpty(t, apiErr.Message)

			require.Len(t, rec.calls, 1)
			assert.Equal(t, "error", rec.calls[0].status)
		})
	}
}

func TestAdapter_CreateImage_PreservesCause(t *testing.T) {
	cause := context.DeadlineExceeded
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
			return nil, cause
		},
	}
	a := NewAdapter(provider, zap.NewNop())

	_, err := a.CreateImage(context.Background(), "p", "auto")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// =============================================================================
// 🧪 EditImage
// =============================================================================

func TestAdapter_EditImage_Success(t *testing.T) {
	src := []byte{0x89, 'P', 'N', 'G', 0xde, 0xad, 0xbe, 0xef}
	want := []byte("edited")

	provider := &mockProvider{
		editFunc: func(ctx context.Context, req *EditRequest) (*GenerateResponse, error) {
			assert.Equal(t, "add a hat", req.Prompt)
			assert.Equal(t, "image.png", req.ImageName)
			got, err := io.ReadAll(req.Image)
			require.NoError(t, err)
			assert.Equal(t, src, got)
			return b64Response(want), nil
		},
	}
	rec := &mockRecorder{}
	a := NewAdapter(provider, zap.NewNop(), WithRecorder(rec))

	data, err := a.EditImage(context.Background(), "add a hat", src)
	require.NoError(t, err)
	assert.Equal(t, want, data)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "edit", rec.calls[0].operation)
	assert.Equal(t, "success", rec.calls[0].status)
}

func TestAdapter_EditImage_ProviderError(t *testing.T) {
	provider := &mockProvider{
		editFunc: func(ctx context.Context, req *EditRequest) (*GenerateResponse, error) {
			return nil, errors.New("openai image edit error: status=400 body=unsupported mimetype")
		},
	}
	a := NewAdapter(provider, zap.NewNop())

	_, err := a.EditImage(context.Background(), "p", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mimetype")
	assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
}

func TestAdapter_SupportedSizes(t *testing.T) {
	a := NewAdapter(&mockProvider{}, zap.NewNop())
	assert.Equal(t, []string{"1024x1024", "auto"}, a.SupportedSizes())
}

// =============================================================================
// 🧪 属性测试
// =============================================================================

// 任意二进制内容经 Provider 编码后，Adapter 返回的字节与原始内容一致
func TestProperty_Adapter_DecodeIsLossless(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		want := rapid.SliceOfN(rapid.Byte(), 1, 4096).Draw(rt, "image")

		provider := &mockProvider{
			generateFunc: func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
				return b64Response(want), nil
			},
		}
		a := NewAdapter(provider, zap.NewNop())

		got, err := a.CreateImage(context.Background(), "p", "1024x1024")
		require.NoError(rt, err)
		assert.Equal(rt, len(want), len(got))
		assert.True(rt, string(want) == string(got))
	})
}

// 任意源图像字节都原样交给 Provider
func TestProperty_Adapter_EditForwardsExactBytes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := rapid.SliceOf(rapid.Byte()).Draw(rt, "source")

		var forwarded []byte
		provider := &mockProvider{
			editFunc: func(ctx context.Context, req *EditRequest) (*GenerateResponse, error) {
				b, err := io.ReadAll(req.Image)
				if err != nil {
					return nil, err
				}
				forwarded = b
				return b64Response([]byte("ok")), nil
			},
		}
		a := NewAdapter(provider, zap.NewNop())

		_, err := a.EditImage(context.Background(), "p", src)
		require.NoError(rt, err)
		assert.True(rt, string(src) == string(forwarded))
	})
}
