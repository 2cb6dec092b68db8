package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Options configures the Valkey connection.
type Options struct {
	Addr     string
	Password string
	Prefix   string
	TTL      time.Duration
}

// Valkey is a byte cache on a Valkey (or Redis) server.
type Valkey struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkey connects and pings the server.
func NewValkey(ctx context.Context, opts Options) (*Valkey, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Valkey client: %w", err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping Valkey: %w", err)
	}
	return &Valkey{client: client, prefix: opts.Prefix, ttl: opts.TTL}, nil
}

// Get returns the cached value. A miss is (nil, false, nil).
func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := v.client.Do(ctx, v.client.B().Get().Key(v.key(key)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores val under key with the configured TTL. A zero TTL never expires.
func (v *Valkey) Set(ctx context.Context, key string, val []byte) error {
	var cmd valkey.Completed
	if secs := int64(v.ttl / time.Second); secs > 0 {
		cmd = v.client.B().Set().Key(v.key(key)).Value(valkey.BinaryString(val)).ExSeconds(secs).Build()
	} else {
		cmd = v.client.B().Set().Key(v.key(key)).Value(valkey.BinaryString(val)).Build()
	}
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (v *Valkey) Close() {
	v.client.Close()
}

func (v *Valkey) key(k string) string {
	return v.prefix + k
}
