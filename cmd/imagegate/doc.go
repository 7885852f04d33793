// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 imagegate 服务端程序入口。

# 概述

cmd/imagegate 是 OpenAI 图像接口 HTTP 门面的可执行入口，提供
serve、version、health 子命令。程序加载 YAML + 环境变量配置，
构建 zap 日志、Prometheus 指标与可选的 OpenTelemetry 追踪。

# 核心类型

  - Server：组装 Provider → Adapter → Handler，管理 API 与 Metrics 两个监听器
  - Middleware：HTTP 中间件函数签名 func(http.Handler) http.Handler

# 主要能力

  - 中间件链：Recovery、RequestID、CORS（完全开放，允许凭证）、
    SecurityHeaders、OTelTracing、RequestLogger、MetricsMiddleware
  - Metrics 服务器：独立端口暴露 /metrics
  - 优雅关闭：SIGINT/SIGTERM → errgroup 并发关闭两个监听器 → 刷新遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
