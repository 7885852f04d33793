package api

// =============================================================================
// 图像生成类型
// =============================================================================

// GenerateImageRequest 表示文生图请求。
// @Description 文生图请求结构
type GenerateImageRequest struct {
	// 提示词（去除首尾空白后不能为空）
	Prompt string `json:"prompt" example:"a watercolor lighthouse at dusk" binding:"required"`
	// 图像尺寸，缺省为 1024x1024
	Size string `json:"size,omitempty" example:"1024x1024" enums:"1024x1024,1536x1024,1024x1536,auto"`
}

// ImageResponse 表示生成或编辑成功后的响应。
// @Description 图像响应结构
type ImageResponse struct {
	// base64 编码的图像字节
	Image string `json:"image"`
}

// ErrorResponse 表示错误响应。
// @Description 错误响应结构
type ErrorResponse struct {
	// 面向客户端的错误描述
	Detail string `json:"detail"`
}

// HealthResponse 表示存活检查响应。
// @Description 存活检查响应结构
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
