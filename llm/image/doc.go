// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 image 封装外部图像生成/编辑服务，对上层只暴露"提示词 → 图像字节"
两种能力。

# 概述

Provider 负责协议细节（模型标识、请求形状、响应编码），Adapter 负责
把 Provider 返回的 base64 载荷解码为原始字节，并在同一处记录指标、
链路与日志。所有失败都会以 types.ErrUpstreamError 向上传播，不做
重试与缓存。

# 核心类型

  - Provider：图像提供者接口，包含 Generate（文生图）、Edit（图像编辑）、
    Name 与 SupportedSizes。
  - OpenAIProvider：OpenAI Images API 实现（/v1/images/generations 与
    /v1/images/edits），默认模型 gpt-image-1。
  - Adapter：CreateImage / EditImage，返回原始图像字节。
  - Recorder：Provider 调用指标记录接口。

# 超时

OpenAIConfig.Timeout 为 0 时不设置客户端超时，调用时长完全由上游
与请求 context 决定。
*/
package image
