package plan

import "errors"

// 规划加载和校验相关错误。
var (
	// ErrEmptyPath 表示规划文件路径为空。
	ErrEmptyPath = errors.New("plan: empty plan path")

	// ErrUnsupportedFormat 表示不支持的规划文件格式。
	ErrUnsupportedFormat = errors.New("plan: unsupported plan format")

	// ErrLoadFailed 表示规划文件读取失败。
	ErrLoadFailed = errors.New("plan: failed to load plan")

	// ErrParseFailed 表示规划内容解析失败。
	ErrParseFailed = errors.New("plan: failed to parse plan")

	// ErrUnmarshalFailed 表示规划内容无法映射到 [Plan]。
	ErrUnmarshalFailed = errors.New("plan: failed to unmarshal plan")

	// ErrInvalidPlan 表示规划内容不满足约束（缺少 base、频道名重复等）。
	ErrInvalidPlan = errors.New("plan: invalid plan")
)
