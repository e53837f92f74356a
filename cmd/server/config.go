package main

import (
	"fmt"
	"strings"
	"time"
)

// Config of the relay. IDLE_TIMEOUT is off by default: the protocol has no
// keepalive command, so a client that only receives would otherwise be
// logged out. Dead peers are detected by TCP keepalive (KEEPALIVE)
// and by failed writes.
type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=12345"`
	WebsocketPort        int           `env:"WEBSOCKET_PORT"`
	HealthPort           int           `env:"HEALTH_PORT"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	TelemetryBufferSize  int           `env:"TELEMETRY_BUFFER_SIZE,default=1024"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=2s"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	IdleTimeout          time.Duration `env:"IDLE_TIMEOUT"`
	KeepAlive            time.Duration `env:"KEEPALIVE,default=30s"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	MaxLineLength        int           `env:"MAX_LINE_LENGTH,default=4096"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=2000"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=1m"`
	CensoredWords        string        `env:"CENSORED_WORDS"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
}

func (c Config) Address(port int) string {
	return fmt.Sprintf("%s:%d", c.Host, port)
}

// CharacterRune returns the moderation mask. It may not be one of the
// protocol delimiters.
func (c Config) CharacterRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 || strings.ContainsRune("|\r\n", r[0]) {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character other than '|', got %q",
			c.CharReplacement,
		)
	}
	return r[0], nil
}

func (c Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("PORT out of range: %d", c.Port)
	case c.WebsocketPort < 0 || c.WebsocketPort > 65535:
		return fmt.Errorf("WEBSOCKET_PORT out of range: %d", c.WebsocketPort)
	case c.HealthPort < 0 || c.HealthPort > 65535:
		return fmt.Errorf("HEALTH_PORT out of range: %d", c.HealthPort)
	case c.ConnectionBufferSize <= 0:
		return fmt.Errorf("CONNECTION_BUFFER_SIZE must be positive")
	case c.TelemetryBufferSize <= 0:
		return fmt.Errorf("TELEMETRY_BUFFER_SIZE must be positive")
	case c.MaxLineLength < 16:
		return fmt.Errorf("MAX_LINE_LENGTH must be at least 16")
	case c.LimitMessages != nil && *c.LimitMessages <= 0:
		return fmt.Errorf("LIMIT_MESSAGES must be positive when set")
	case c.SinkTimeout <= 0 || c.DeliveryTimeout <= 0:
		return fmt.Errorf("SINK_TIMEOUT and DELIVERY_TIMEOUT must be positive")
	case c.IdleTimeout < 0:
		return fmt.Errorf("IDLE_TIMEOUT must not be negative")
	case c.KeepAlive < 0:
		return fmt.Errorf("KEEPALIVE must not be negative")
	case c.HeartbeatInterval <= 0:
		return fmt.Errorf("HEARTBEAT_INTERVAL must be positive")
	}
	_, err := c.CharacterRune()
	return err
}
