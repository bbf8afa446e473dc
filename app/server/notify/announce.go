package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Announcer 把新发布的文章通告到外部社交平台。调用方把失败降级为警告，
// 不会重试，也不会影响请求结果。
type Announcer interface {
	Announce(ctx context.Context, title, body string, userID uint) error
}

type announcePayload struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID uint   `json:"userId"`
}

type HTTPAnnouncer struct {
	client *http.Client
	url    string
}

func NewHTTPAnnouncer(url string, timeout time.Duration) *HTTPAnnouncer {
	return &HTTPAnnouncer{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (a *HTTPAnnouncer) Announce(ctx context.Context, title, body string, userID uint) error {
	if a.url == "" {
		// 未配置通告地址，静默跳过
		return nil
	}

	payloadBytes, err := json.Marshal(&announcePayload{
		Title:  title,
		Body:   body,
		UserID: userID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal announce payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to create announce request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call announce endpoint: %w", err)
	}
	defer res.Body.Close()

	// 只关心成功与否，不消费响应内容
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("announce endpoint returned status %d", res.StatusCode)
	}

	return nil
}
