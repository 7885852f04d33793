// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 imagegate 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 api、llm/image 等
上层模块提供统一的错误契约。

# 核心类型

  - Error / ErrorCode：结构化错误，含 HTTP 状态码、Provider 标记与 Cause 链
*/
package types
