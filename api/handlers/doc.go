// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 imagegate HTTP API 的请求处理器实现。

# 概述

handlers 包实现健康检查、文生图与图像编辑三个端点，以及统一的
响应/错误处理。所有 Handler 均遵循标准 net/http 接口。

# 核心类型

  - ImageHandler：/api/generate 与 /api/edit，依赖注入的 ImageService
  - HealthHandler：/health 与 /version，从不访问 Provider
  - ResponseWriter：包装 http.ResponseWriter 以捕获状态码与响应大小

# 错误处理

ToAPIError 是边界上唯一的错误转换：已分类的 *types.Error 原样保留，
其它失败归为 ErrInternalError。WriteError 按错误码映射状态码
（INVALID_REQUEST → 400，UPSTREAM_ERROR / INTERNAL_ERROR → 500），
响应体为 {"detail": "<消息原文>"}。
*/
package handlers
