package log

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLogger_ConcurrentFirstUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Debugw("worker started", "worker", n)
		}(i)
	}
	wg.Wait()

	first := sugared()
	require.NotNil(t, first)
	assert.Same(t, first, sugared())
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Infow("scene derived", "scene", "2025-06-01")
	Debugf("hidden %d", 1)
	Warnf("missing %s", "NDWI")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "scene derived", entries[0].Message)
	assert.Equal(t, "2025-06-01", entries[0].ContextMap()["scene"])
	assert.Equal(t, "missing NDWI", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
