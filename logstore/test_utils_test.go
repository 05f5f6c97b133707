package logstore

import (
	"encoding/hex"
	"os"
	"strings"
	"testing"

	"github.com/go-stdlog/stdlog"
	"github.com/stretchr/testify/require"

	"github.com/heyvito/walcursor/logrec"
)

func mustBytesFromHex(s string) []byte {
	s = strings.ReplaceAll(s, " ", "")
	v, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type configOpt func(*Config)

func withLogger() configOpt {
	return func(c *Config) { c.Logger = stdlog.NewStd(os.Stdout) }
}

func withSegmentSize(size int64) configOpt {
	return func(c *Config) { c.SegmentSize = size }
}

func withAlignment(alignment int) configOpt {
	return func(c *Config) { c.Alignment = alignment }
}

func newTestConfig(t *testing.T, opts ...configOpt) Config {
	t.Helper()
	c := Config{
		WorkDir:     t.TempDir(),
		SegmentSize: 256,
		Alignment:   -1,
		Logger:      stdlog.Discard,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func openTestStore(t *testing.T, config Config) *Store {
	t.Helper()
	s, err := Open(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func checkpointBody(payload string) []byte {
	return logrec.AppendRecordBody(nil, logrec.RecordCheckpoint, []byte(payload))
}
