package telegram

import (
	"net"
	"net/http"
	"time"
)

// HTTPClientOptions tunes the client used for Bot API calls. Zero values pick
// defaults. Calls are never retried: a failed send surfaces to its handler.
type HTTPClientOptions struct {
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	ClientTimeout   time.Duration
}

func (o HTTPClientOptions) withDefaults(longPoll time.Duration) HTTPClientOptions {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.ResponseTimeout <= 0 {
		// getUpdates holds the response open for the long-poll timeout.
		o.ResponseTimeout = longPoll + 5*time.Second
	}
	if o.ClientTimeout <= 0 {
		o.ClientTimeout = longPoll + 30*time.Second
	}
	return o
}

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
func BuildHTTPClient(opts HTTPClientOptions, longPoll time.Duration) *http.Client {
	opts = opts.withDefaults(longPoll)
	return &http.Client{
		Timeout: opts.ClientTimeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: opts.DialTimeout, KeepAlive: 30 * time.Second}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: opts.ResponseTimeout,
		},
	}
}
