package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"kbharvest"
	"kbharvest/mock"
	kbslog "kbharvest/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherLogging(t *testing.T) {
	t.Parallel()

	t.Run("logs classified outcome and delegates", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		next := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*kbharvest.FetchResult, error) {
				return &kbharvest.FetchResult{URL: url, Status: kbharvest.FetchOK, HTML: "<html></html>", Method: kbharvest.MethodPrimary}, nil
			},
		}

		res, err := kbslog.NewFetcher(next, logger).Fetch(context.Background(), "https://a.com/x")

		require.NoError(t, err)
		assert.Equal(t, kbharvest.FetchOK, res.Status)
		assert.Contains(t, buf.String(), "https://a.com/x")
		assert.Contains(t, buf.String(), "status=ok")
	})
}

func TestReporter(t *testing.T) {
	t.Parallel()

	t.Run("failed attempts log at warn", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		kbslog.NewReporter(logger).ReportFetch(kbharvest.FetchAttempt{
			URL:    "https://a.com/x",
			Method: kbharvest.MethodPrimary,
			Status: kbharvest.FetchBlocked,
		})

		assert.Contains(t, buf.String(), "level=WARN")
		assert.Contains(t, buf.String(), "status=blocked")
	})

	t.Run("successful attempts stay below default level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		kbslog.NewReporter(logger).ReportFetch(kbharvest.FetchAttempt{
			URL:    "https://a.com/x",
			Method: kbharvest.MethodPrimary,
			Status: kbharvest.FetchOK,
		})

		assert.Empty(t, buf.String())
	})
}
