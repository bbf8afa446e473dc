package inits

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"daily-journalist/app/server/config"
)

func Config() (cfg *config.Config, err error) {
	// 手动配置映射，如果这里有什么自动映射工具就好了， viper 好像处理这种基于环境变量的配置也不是很方便
	cfg = &config.Config{}

	{
		mode, exist := os.LookupEnv("MODE")
		cfg.System.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	if listen, exist := os.LookupEnv("LISTEN"); !exist {
		cfg.System.Listen = ":1323" // 默认监听地址
	} else {
		cfg.System.Listen = listen
	}

	if dbconn, exist := os.LookupEnv("DB_CONN"); !exist {
		return nil, fmt.Errorf("DB_CONN environment variable not set")
	} else {
		cfg.System.DBConnectionString = dbconn
	}

	if redisconn, exist := os.LookupEnv("REDIS_CONN"); !exist {
		return nil, fmt.Errorf("REDIS_CONN environment variable not set")
	} else {
		cfg.System.RedisConnectionString = redisconn
	}

	if baseURL, exist := os.LookupEnv("BASE_URL"); !exist {
		cfg.System.BaseURL = "http://127.0.0.1:1323" // 默认本机地址
	} else {
		cfg.System.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	// 可以为空，为空时跳过社交平台通告
	cfg.System.AnnounceURL = os.Getenv("ANNOUNCE_URL")

	if sigsk, exist := os.LookupEnv("SIGNATURE_SECRET_KEY"); !exist {
		return nil, fmt.Errorf("SIGNATURE_SECRET_KEY environment variable not set")
	} else {
		cfg.Security.SignatureSecretKey = sigsk
	}

	if mailHost, exist := os.LookupEnv("MAIL_HOST"); !exist {
		return nil, fmt.Errorf("MAIL_HOST environment variable not set")
	} else {
		cfg.Mail.Host = mailHost
	}

	if mailPort, exist := os.LookupEnv("MAIL_PORT"); !exist {
		cfg.Mail.Port = 587 // 默认提交端口
	} else if port, err := strconv.Atoi(mailPort); err != nil {
		return nil, fmt.Errorf("invalid MAIL_PORT: %w", err)
	} else {
		cfg.Mail.Port = port
	}

	cfg.Mail.Username = os.Getenv("MAIL_USERNAME")
	cfg.Mail.Password = os.Getenv("MAIL_PASSWORD")

	if mailFrom, exist := os.LookupEnv("MAIL_FROM"); !exist {
		return nil, fmt.Errorf("MAIL_FROM environment variable not set")
	} else {
		cfg.Mail.From = mailFrom
	}

	if operator, exist := os.LookupEnv("OPERATOR_EMAIL"); !exist {
		cfg.Mail.OperatorEmail = cfg.Mail.From // 默认用发件地址作为运营方地址
	} else {
		cfg.Mail.OperatorEmail = operator
	}

	return cfg, nil
}
