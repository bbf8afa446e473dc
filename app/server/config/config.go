package config

type Config struct {
	System struct {
		IsProd                bool   // 是否为生产环境
		Listen                string // 监听地址
		DBConnectionString    string // Postgres 数据库的连接字符串
		RedisConnectionString string // Redis 数据库的连接字符串
		BaseURL               string // 对外的站点地址，用于拼接文章链接
		AnnounceURL           string // 社交平台通告接口地址，留空表示不通告
	}
	Security struct {
		SignatureSecretKey string // 签名密钥，用于产生签名（例如 JWT ），更新会导致旧有会话失效，但不影响使用
	}
	Mail struct {
		Host          string // SMTP 服务器地址
		Port          int    // SMTP 端口
		Username      string // SMTP 用户名
		Password      string // SMTP 密码
		From          string // 发件人地址
		OperatorEmail string // 运营方邮箱，审批通知邮件固定包含这个地址
	}
}
