package logger_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/storyloom/warden/internal/adapters/logger"
	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)

	l.Info("cache reloaded")
	l.Warn("artifact missing")
	l.Error(errors.New("push rejected"))

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "cache reloaded")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "artifact missing")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "push rejected")
}

func TestLoggerConcurrentUse(t *testing.T) {
	var buf syncBuffer
	l := logger.New()
	l.SetOutput(&buf)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Info("concurrent write")
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, bytes.Count(buf.Bytes(), []byte("concurrent write")))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}
