package loopnet_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-parser/scraper/loopnet"
	"property-parser/storage"
	"property-parser/utils"
)

func TestWorkerPool_ParseFiles(t *testing.T) {
	t.Parallel()

	t.Run("returns results in file order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		archive, err := storage.NewHTMLArchive(dir)
		require.NoError(t, err)

		for i := 1; i <= 6; i++ {
			_, err := archive.Save(i, page("", placard(string(rune('a'+i-1)))))
			require.NoError(t, err)
		}

		paths, err := storage.ListHTML(dir)
		require.NoError(t, err)

		results := loopnet.NewWorkerPool(3, utils.Discard).ParseFiles(context.Background(), paths)
		require.Len(t, results, 6)

		var got []string
		for i, r := range results {
			assert.Equal(t, i, r.Index)
			assert.Equal(t, paths[i], r.Path)
			assert.NoError(t, r.Error)
			got = append(got, ids(r.Listings)...)
		}
		assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, got)
	})

	t.Run("reports unreadable files without stopping", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		good := filepath.Join(dir, "good.html")
		require.NoError(t, os.WriteFile(good, []byte(page("", defaultPlacard, tier2Placard)), 0644))

		results := loopnet.NewWorkerPool(2, nil).ParseFiles(context.Background(),
			[]string{filepath.Join(dir, "missing.html"), good})
		require.Len(t, results, 2)

		assert.Error(t, results[0].Error)
		assert.Empty(t, results[0].Listings)

		assert.NoError(t, results[1].Error)
		assert.Equal(t, []string{"1001", "2002"}, ids(results[1].Listings))
	})

	t.Run("nothing to do", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, loopnet.NewWorkerPool(4, utils.Discard).ParseFiles(context.Background(), nil))
	})

	t.Run("cancelled context fails every job", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results := loopnet.NewWorkerPool(2, utils.Discard).ParseFiles(ctx, []string{"a.html", "b.html"})
		require.Len(t, results, 2)
		for _, r := range results {
			assert.ErrorIs(t, r.Error, context.Canceled)
		}
	})
}
