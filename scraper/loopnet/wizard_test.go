package loopnet_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-parser/scraper/loopnet"
)

func TestStaticWizard(t *testing.T) {
	t.Parallel()

	got, err := loopnet.StaticWizard{URL: "  " + startURL + "\n"}.StartURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, startURL, got)

	_, err = loopnet.StaticWizard{}.StartURL(context.Background())
	assert.Error(t, err)
}

func TestPromptWizard(t *testing.T) {
	t.Parallel()

	t.Run("reads one line", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		w := loopnet.PromptWizard{In: strings.NewReader(startURL + "\nignored\n"), Out: &out}

		got, err := w.StartURL(context.Background())
		require.NoError(t, err)
		assert.Equal(t, startURL, got)
		assert.Contains(t, out.String(), "search results URL")
	})

	t.Run("accepts a last line without newline", func(t *testing.T) {
		t.Parallel()

		got, err := loopnet.PromptWizard{In: strings.NewReader(startURL)}.StartURL(context.Background())
		require.NoError(t, err)
		assert.Equal(t, startURL, got)
	})

	t.Run("fails on empty input", func(t *testing.T) {
		t.Parallel()

		_, err := loopnet.PromptWizard{In: strings.NewReader("")}.StartURL(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("gives up when the context ends", func(t *testing.T) {
		t.Parallel()

		r, w := io.Pipe()
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := loopnet.PromptWizard{In: r}.StartURL(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestValidateStartURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		wantErr bool
	}{
		{"https://www.loopnet.ca/search/x/", false},
		{"http://www.loopnet.ca/search/x/?sk=1", false},
		{"www.loopnet.ca/search/x/", true},
		{"ftp://www.loopnet.ca/", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			_, err := loopnet.ValidateStartURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
