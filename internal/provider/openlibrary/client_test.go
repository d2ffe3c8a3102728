package openlibrary

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelshelf/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestSearch(t *testing.T) {
	var gotReq *http.Request
	client := New(nil, WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		gotReq = req
		body := `{"numFound":2,"docs":[
			{"key":"/works/OL893415W","title":"Dune","author_name":["Frank Herbert"],"first_publish_year":1965,"cover_i":11481354,"ratings_average":4.25,"number_of_pages_median":604},
			{"key":"/works/OL893416W","title":"Dune Messiah","author_name":["Frank Herbert"],"first_publish_year":1969}
		]}`
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString(body)), Header: make(http.Header)}, nil
	})}))

	matches, err := client.Search(context.Background(), "Dune", "Frank Herbert")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	q := gotReq.URL.Query()
	assert.Equal(t, "/search.json", gotReq.URL.Path)
	assert.Equal(t, "Dune", q.Get("title"))
	assert.Equal(t, "Frank Herbert", q.Get("author"))
	assert.Equal(t, "5", q.Get("limit"))
	assert.NotEmpty(t, q.Get("fields"), "the fields parameter keeps the payload small")

	first := matches[0]
	assert.Equal(t, "/works/OL893415W", first.ID)
	assert.Equal(t, "Frank Herbert", first.Author)
	assert.Equal(t, 1965, first.Year)
	assert.Equal(t, 604, first.Pages)
	assert.Equal(t, domain.BookSourceOpenLibrary, first.Source)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/11481354-M.jpg", first.CoverURL)

	assert.Empty(t, matches[1].CoverURL, "a doc without cover_i gets no cover URL")
}

func TestSearchOmitsEmptyAuthor(t *testing.T) {
	var gotReq *http.Request
	client := New(nil, WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		gotReq = req
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString(`{"numFound":0,"docs":[]}`)), Header: make(http.Header)}, nil
	})}))

	matches, err := client.Search(context.Background(), "Dune", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.False(t, gotReq.URL.Query().Has("author"))
}

func TestCoverURLs(t *testing.T) {
	client := New(nil)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-M.jpg", client.CoverURLByID(42))
	assert.Equal(t, "https://covers.openlibrary.org/b/isbn/9780441172719-M.jpg", client.CoverURLByISBN("9780441172719"))
}
