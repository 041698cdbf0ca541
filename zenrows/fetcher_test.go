package zenrows_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"kbharvest"
	"kbharvest/zenrows"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("passes target url and api key to the provider", func(t *testing.T) {
		t.Parallel()

		var gotQuery map[string][]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte("<html>rendered</html>"))
		}))
		defer srv.Close()

		fetcher := zenrows.NewFetcher("secret", zenrows.WithEndpoint(srv.URL))
		res, err := fetcher.Fetch(context.Background(), "https://target.example.com/post")

		require.NoError(t, err)
		assert.Equal(t, kbharvest.FetchOK, res.Status)
		assert.Equal(t, kbharvest.MethodFallback, res.Method)
		assert.Equal(t, "<html>rendered</html>", res.HTML)
		assert.Equal(t, "https://target.example.com/post", gotQuery["url"][0])
		assert.Equal(t, "secret", gotQuery["apikey"][0])
		assert.NotContains(t, gotQuery, "js_render")
	})

	t.Run("premium mode requests rendering and proxies", func(t *testing.T) {
		t.Parallel()

		var gotQuery map[string][]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			_, _ = w.Write([]byte("ok"))
		}))
		defer srv.Close()

		fetcher := zenrows.NewFetcher("secret",
			zenrows.WithEndpoint(srv.URL),
			zenrows.WithPremium(true),
		)
		_, err := fetcher.Fetch(context.Background(), "https://target.example.com/post")

		require.NoError(t, err)
		assert.Equal(t, "true", gotQuery["js_render"][0])
		assert.Equal(t, "true", gotQuery["premium_proxy"][0])
		assert.Equal(t, "2000", gotQuery["wait"][0])
	})

	t.Run("provider failure is encoded in status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		fetcher := zenrows.NewFetcher("secret", zenrows.WithEndpoint(srv.URL))
		res, err := fetcher.Fetch(context.Background(), "https://target.example.com/post")

		require.NoError(t, err)
		assert.Equal(t, kbharvest.FetchError, res.Status)
	})

	t.Run("missing api key is a configuration error", func(t *testing.T) {
		t.Parallel()

		fetcher := zenrows.NewFetcher("")
		_, err := fetcher.Fetch(context.Background(), "https://target.example.com/post")

		assert.Equal(t, kbharvest.ECONFIG, kbharvest.ErrorCode(err))
	})
}
