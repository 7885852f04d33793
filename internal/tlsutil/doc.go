// Package tlsutil 为访问上游图像 API 的 HTTP 客户端提供加固的 TLS 与连接池设置
// （TLS 1.2+，仅 AEAD 密码套件，遵循 HTTPS_PROXY 等环境变量）。
package tlsutil
