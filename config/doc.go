// Package config 提供 imagegate 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量（IMAGEGATE_ 前缀）的顺序加载，
// 未设置 IMAGEGATE_IMAGE_API_KEY 时回退到 OPENAI_API_KEY。
package config
