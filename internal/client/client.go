package client

import (
	"context"
	"io"
	"net/http"
)

const DefaultFCMEndpoint = "https://fcm.googleapis.com/fcm/send"

// maxResponseBytes bounds every response body read from upstream APIs.
const maxResponseBytes = 300000

type Client struct {
	*http.Client
	FCMKey      string
	FCMEndpoint string
	Logger      logger
}

type logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

func newRequest(ctx context.Context, method string, url string, body io.Reader) (*http.Request, error) {
	r, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	setDefaultRequestHeader(r)
	return r, nil
}

func setDefaultRequestHeader(r *http.Request) {
	r.Header.Set("User-Agent", "pantry/1.0")
	r.Header.Set("Accept", "application/json")
}

func (c Client) fcmEndpoint() string {
	if c.FCMEndpoint == "" {
		return DefaultFCMEndpoint
	}
	return c.FCMEndpoint
}
