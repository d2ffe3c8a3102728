package googlebooks

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

func newTestClient(rt roundTripFunc) *Client {
	return New(nil, WithHTTPClient(&http.Client{Transport: rt}))
}

func TestSearchReturnsFirstCoveredVolume(t *testing.T) {
	var gotReq *http.Request
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotReq = req
		body := `{"totalItems":2,"items":[
			{"id":"v1","volumeInfo":{"title":"Dune","authors":["Frank Herbert"]}},
			{"id":"v2","volumeInfo":{"title":"Dune","authors":["Frank Herbert"],"publishedDate":"1965-08-01","pageCount":604,"imageLinks":{"thumbnail":"http://books.google.com/cover.jpg"}}}
		]}`
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString(body)), Header: make(http.Header)}, nil
	})

	m, err := client.Search(context.Background(), "Dune", "Frank Herbert")
	require.NoError(t, err)
	require.NotNil(t, m)

	q := gotReq.URL.Query().Get("q")
	assert.Contains(t, q, `intitle:"Dune"`)
	assert.Contains(t, q, `inauthor:"Frank Herbert"`)

	assert.Equal(t, "v2", m.ID, "volumes without a thumbnail are skipped")
	assert.Equal(t, "https://books.google.com/cover.jpg", m.CoverURL, "thumbnail links are upgraded to https")
	assert.Equal(t, 1965, m.Year)
	assert.Equal(t, 604, m.Pages)
	assert.Equal(t, domain.BookSourceGoogleBooks, m.Source)
}

func TestSearchNoCoveredVolume(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		body := `{"totalItems":1,"items":[{"id":"v1","volumeInfo":{"title":"Dune"}}]}`
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString(body)), Header: make(http.Header)}, nil
	})

	m, err := client.Search(context.Background(), "Dune", "")
	require.NoError(t, err)
	assert.Nil(t, m, "no covered volume means no result, not an error")
}

func TestSearchFallsBackToSmallThumbnail(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		body := `{"totalItems":1,"items":[{"id":"v1","volumeInfo":{"title":"Dune","imageLinks":{"smallThumbnail":"https://books.google.com/small.jpg"}}}]}`
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString(body)), Header: make(http.Header)}, nil
	})

	m, err := client.Search(context.Background(), "Dune", "")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "https://books.google.com/small.jpg", m.CoverURL)
}
