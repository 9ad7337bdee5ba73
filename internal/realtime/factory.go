package realtime

import (
	"fmt"

	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/config"
)

// NewTransportFromConfig creates the Transport named by cfg.Realtime.Transport.
// "sse" streams from the API host, "redis" subscribes to a pub/sub channel
// and "none" disables push updates.
func NewTransportFromConfig(cfg *config.Config, tokens client.TokenSource) (Transport, error) {
	switch cfg.Realtime.Transport {
	case config.TransportNone, "":
		return NopTransport{}, nil
	case config.TransportSSE:
		return NewSSETransport(cfg.API.BaseURL, cfg.Realtime.StreamPath, tokens, cfg.Realtime.ReconnectInterval)
	case config.TransportRedis:
		return NewRedisTransport(cfg.Realtime.RedisAddr, cfg.Realtime.RedisPassword, cfg.Realtime.RedisDB, cfg.Realtime.RedisChannel), nil
	default:
		return nil, fmt.Errorf("unknown realtime transport: %s (supported: %s, %s, %s)",
			cfg.Realtime.Transport, config.TransportSSE, config.TransportRedis, config.TransportNone)
	}
}
