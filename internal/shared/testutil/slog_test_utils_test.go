package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscreen/internal/dataprocessing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("derived loggers share records and keep attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		component := logger.With(slog.String("component", "preparer"))
		component.WithGroup("dataset").Info("prepared", slog.Int("rows", 17))

		require.Equal(t, 1, handler.Count())
		AssertLogAttr(t, handler, "component", "preparer")
		AssertLogAttr(t, handler, "dataset.rows", int64(17))
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		assert.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		logger.Warn("warning message", slog.Int("retry", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogAttr(t, handler, "component", "test")
		AssertNoErrors(t, handler)
	})

	t.Run("thread safety", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.InfoContext(context.Background(), "concurrent log", slog.Int("goroutine", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, handler.Count())
	})
}

func TestBondFixtures(t *testing.T) {
	ds := SampleDataset(t)
	assert.Equal(t, Reference, ds.ReferenceTime)
	assert.Len(t, ds.Records, len(dataprocessing.SampleTable().Rows))

	data := SampleWorkbook(t)
	require.NotEmpty(t, data)

	table, err := dataprocessing.ParseWorkbook(bytes.NewReader(data), dataprocessing.DefaultSheetName)
	require.NoError(t, err)
	assert.Equal(t, dataprocessing.SampleTable().Fingerprint(), table.Fingerprint())
}
