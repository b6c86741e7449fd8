package loopnet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-parser/scraper/loopnet"
)

func TestFindNext(t *testing.T) {
	t.Parallel()

	t.Run("returns the next link href", func(t *testing.T) {
		t.Parallel()

		doc, err := loopnet.ParseHTML(page("https://www.loopnet.ca/search/x/2/", placard("1")))
		require.NoError(t, err)

		href, ok := loopnet.FindNext(doc)
		assert.True(t, ok)
		assert.Equal(t, "https://www.loopnet.ca/search/x/2/", href)
	})

	t.Run("signals end of results without a link", func(t *testing.T) {
		t.Parallel()

		doc, err := loopnet.ParseHTML(page("", placard("1")))
		require.NoError(t, err)

		_, ok := loopnet.FindNext(doc)
		assert.False(t, ok)
	})

	t.Run("ignores a link with an empty href", func(t *testing.T) {
		t.Parallel()

		doc, err := loopnet.ParseHTML(`<a data-automation-id="NextPage" href=" ">Next</a>`)
		require.NoError(t, err)

		_, ok := loopnet.FindNext(doc)
		assert.False(t, ok)
	})
}

func TestResolveNext(t *testing.T) {
	t.Parallel()

	params := []string{"sk"}

	tests := []struct {
		name    string
		current string
		href    string
		want    string
	}{
		{
			name:    "carries the sort key over",
			current: "https://www.loopnet.ca/search/commercial-real-estate/toronto-on/for-sale/?sk=abc123",
			href:    "https://www.loopnet.ca/search/commercial-real-estate/toronto-on/for-sale/2/",
			want:    "https://www.loopnet.ca/search/commercial-real-estate/toronto-on/for-sale/2/?sk=abc123",
		},
		{
			name:    "resolves a relative href",
			current: "https://www.loopnet.ca/search/x/2/?sk=abc",
			href:    "/search/x/3/",
			want:    "https://www.loopnet.ca/search/x/3/?sk=abc",
		},
		{
			name:    "keeps a sort key the link already has",
			current: "https://www.loopnet.ca/search/x/?sk=old",
			href:    "/search/x/2/?sk=new",
			want:    "https://www.loopnet.ca/search/x/2/?sk=new",
		},
		{
			name:    "leaves the link alone without a session key",
			current: "https://www.loopnet.ca/search/x/",
			href:    "/search/x/2/?page=2",
			want:    "https://www.loopnet.ca/search/x/2/?page=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loopnet.ResolveNext(tt.current, tt.href, params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects a broken current url", func(t *testing.T) {
		t.Parallel()

		_, err := loopnet.ResolveNext("://bad", "/2/", params)
		assert.Error(t, err)
	})
}
