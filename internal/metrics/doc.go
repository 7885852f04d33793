// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集，覆盖 HTTP 请求与
图像 Provider 调用两个维度。

# 概述

Collector 通过 promauto 注册到默认 Registry，所有指标按 namespace
隔离。HTTP 路径标签经调用方归一化后写入，避免时间序列膨胀。

# 核心类型

  - Collector：持有 HTTP 计数/耗时/大小直方图、在途请求 Gauge，
    以及按 provider、model、operation、status 分组的图像调用指标。
    Collector 满足 image.Recorder 接口。
*/
package metrics
