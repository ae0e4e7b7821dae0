package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	opts := &Options{}

	require.Equal(t, DefaultHandshakeTimeout, opts.EffectiveHandshakeTimeout())
	require.Equal(t, DefaultShutdownTimeout, opts.EffectiveShutdownTimeout())

	name, version := opts.ClientIdentity()
	require.Equal(t, DefaultClientName, name)
	require.Equal(t, DefaultClientVersion, version)
}

func TestOptionsOverrides(t *testing.T) {
	tests := []struct {
		name         string
		opts         Options
		wantHS       time.Duration
		wantShutdown time.Duration
	}{
		{
			name:         "explicit values",
			opts:         Options{HandshakeTimeout: time.Second, ShutdownTimeout: 2 * time.Second},
			wantHS:       time.Second,
			wantShutdown: 2 * time.Second,
		},
		{
			name:         "negative handshake disables the bound",
			opts:         Options{HandshakeTimeout: -1},
			wantHS:       -1,
			wantShutdown: DefaultShutdownTimeout,
		},
		{
			name:         "negative shutdown falls back to default",
			opts:         Options{ShutdownTimeout: -time.Second},
			wantHS:       DefaultHandshakeTimeout,
			wantShutdown: DefaultShutdownTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.wantHS, tt.opts.EffectiveHandshakeTimeout())
			require.Equal(t, tt.wantShutdown, tt.opts.EffectiveShutdownTimeout())
		})
	}

	opts := Options{ClientName: "desktop", ClientVersion: "2.0.0"}
	name, version := opts.ClientIdentity()
	require.Equal(t, "desktop", name)
	require.Equal(t, "2.0.0", version)
}
