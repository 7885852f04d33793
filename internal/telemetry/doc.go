// Package telemetry 封装 OpenTelemetry SDK 初始化，
// 为 imagegate 的 HTTP 中间件与图像适配器提供全局 TracerProvider。
// 关闭时只安装传播器，不连接任何外部服务。
package telemetry
