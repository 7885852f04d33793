// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供 HTTP 监听器的生命周期管理。

# 概述

Manager 封装 net/http.Server：Start 同步绑定端口并在后台服务，
Shutdown 在超时内排空在途请求，Run 把二者串成一个可交给
errgroup 的阻塞调用。imagegate 为 API 与 /metrics 各启动一个
Manager，通过 Config.Name 在日志中区分。

# 核心类型

  - Manager：持有 http.Server、net.Listener 与异步错误通道
  - Config：监听地址、读写/空闲超时、请求头上限与关闭超时
*/
package server
