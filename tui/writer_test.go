package tui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct {
	failAfter int
	written   int
}

func (fw *failingWriter) Write(p []byte) (int, error) {
	if fw.written >= fw.failAfter {
		return 0, errors.New("write failed")
	}
	fw.written += len(p)
	return len(p), nil
}

func TestTableWriter_NoError(t *testing.T) {
	var buf bytes.Buffer
	tw := &tableWriter{w: &buf}

	tw.printf("verdict %s\n", "allow")
	tw.println("run complete")

	require.NoError(t, tw.Err())
	assert.Equal(t, "verdict allow\nrun complete\n", buf.String())
}

func TestTableWriter_CapturesFirstError(t *testing.T) {
	tw := &tableWriter{w: &failingWriter{failAfter: 0}}

	tw.printf("this will fail")

	assert.Error(t, tw.Err())
}

func TestTableWriter_SkipsWritesAfterError(t *testing.T) {
	fw := &failingWriter{failAfter: 0}
	tw := &tableWriter{w: fw}

	tw.printf("first")
	firstErr := tw.Err()
	require.Error(t, firstErr)

	tw.printf("second")
	tw.println("third")

	assert.Same(t, firstErr, tw.Err())
	assert.Zero(t, fw.written)
}
