package constants

import "time"

const (
	AuthTokenDuration = 24 * time.Hour // JWT 有效期
	AnnounceTimeout   = 5 * time.Second
)
