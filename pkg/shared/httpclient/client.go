package httpclient

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/revio-dev/revio/pkg/shared/config"
)

// HclogAdapter adapts an hclog.Logger to be compatible with the resty log.Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates a new adapter that will forward messages to a hclog.Logger.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// SetLoggerForResty sets the adapted hclog.Logger as the logger for Resty.
func SetLoggerForResty(client *resty.Client, logger hclog.Logger) {
	client.SetLogger(NewHclogAdapter(logger))
}

// InitializeRestyClient initializes and configures a resty client based on the provided configuration.
func InitializeRestyClient(logger hclog.Logger, cfg *config.Config) *resty.Client {
	client := resty.New()
	if logger != nil {
		SetLoggerForResty(client, logger)
	}

	httpCfg := cfg.HttpClient
	client.
		SetDebug(httpCfg.Debug).
		SetRetryCount(config.SetThen(httpCfg.RetryCount, 3)).
		SetRetryWaitTime(config.SetThen(httpCfg.RetryWaitTime, 1*time.Second)).
		SetRetryMaxWaitTime(config.SetThen(httpCfg.RetryMaxWaitTime, 10*time.Second)).
		SetTimeout(config.SetThen(httpCfg.Timeout, 2*time.Minute)).
		SetTLSClientConfig(&tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: httpCfg.TlsClientConfig.InsecureSkipVerify,
		})

	if httpCfg.Proxy.Host != "" && httpCfg.Proxy.Port != "" {
		client.SetProxy(fmt.Sprintf("%s:%s", httpCfg.Proxy.Host, httpCfg.Proxy.Port))
	}

	return client
}
