package utils

// P 取值的指针，方便构造响应体里的可选字段
func P[T any](v T) *T {
	return &v
}
