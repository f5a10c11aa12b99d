package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

var client *resty.Client

func init() {
	client = resty.New()
	client.SetTransport(&http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	client.SetTimeout(15 * time.Second)
	client.SetRetryCount(3).
		SetRetryWaitTime(time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
					if t, err := http.ParseTime(retryAfter); err == nil {
						return time.Until(t), nil
					}
				}
				return time.Second, nil
			}
			return 0, nil
		}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
}

func Request() *resty.Request {
	return client.R().SetLogger(disableLogger{}).SetHeader("User-Agent", "beook2pdf")
}

type disableLogger struct{}

func (d disableLogger) Errorf(string, ...interface{}) {}
func (d disableLogger) Warnf(string, ...interface{})  {}
func (d disableLogger) Debugf(string, ...interface{}) {}

// Webhook posts job progress as JSON to a fixed URL.
type Webhook struct {
	URL string
}

type progressPayload struct {
	JobId   string `json:"job_id"`
	Percent int    `json:"percent"`
}

func (w *Webhook) Notify(ctx context.Context, jobId string, percent int) error {
	resp, err := Request().
		SetContext(ctx).
		SetBody(progressPayload{JobId: jobId, Percent: percent}).
		Post(w.URL)
	if err != nil {
		return fmt.Errorf("failed to post progress: %v", err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to post progress: %v", resp.Status())
	}
	return nil
}
