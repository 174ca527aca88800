package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donesync/internal/blocks"
)

type recordedCall struct {
	Method   string
	Path     string
	Header   http.Header
	Title    string
	Parent   string
	Children []Object
}

// fakeHost mimics the page and block endpoints. failAppend makes the n-th
// append call (1-based) fail; zero disables it.
type fakeHost struct {
	mu         sync.Mutex
	calls      []recordedCall
	pageID     string
	pageURL    string
	failCreate bool
	failAppend int
	appends    int
}

func (f *fakeHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body struct {
		Parent struct {
			PageID string `json:"page_id"`
		} `json:"parent"`
		Properties struct {
			Title []struct {
				Text TextContent `json:"text"`
			} `json:"title"`
		} `json:"properties"`
		Children []Object `json:"children"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	call := recordedCall{
		Method:   r.Method,
		Path:     r.URL.Path,
		Header:   r.Header.Clone(),
		Parent:   body.Parent.PageID,
		Children: body.Children,
	}
	if len(body.Properties.Title) > 0 {
		call.Title = body.Properties.Title[0].Text.Content
	}
	f.calls = append(f.calls, call)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/pages":
		if f.failCreate {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"object":"error","status":400,"code":"validation_error","message":"body failed validation"}`))
			return
		}
		resp := map[string]string{"object": "page", "id": f.pageID}
		if f.pageURL != "" {
			resp["url"] = f.pageURL
		}
		_ = json.NewEncoder(w).Encode(resp)
	case r.Method == http.MethodPatch && r.URL.Path == "/blocks/"+f.pageID+"/children":
		f.appends++
		if f.failAppend > 0 && f.appends == f.failAppend {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"object":"list","results":[]}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestPublisher(t *testing.T, host *fakeHost) *Publisher {
	t.Helper()
	srv := httptest.NewServer(host)
	t.Cleanup(srv.Close)
	client := NewClient("secret-token", WithBaseURL(srv.URL+"/"), WithVersion("2022-06-28"))
	return NewPublisher(client, nil)
}

func numberedDocument(n int) blocks.Document {
	doc := make(blocks.Document, 0, n)
	for i := 0; i < n; i++ {
		doc = append(doc, blocks.Paragraph{Runs: []blocks.TextRun{{Content: fmt.Sprintf("p-%d", i)}}})
	}
	return doc
}

func deliveredTexts(calls []recordedCall) []string {
	var out []string
	for _, c := range calls {
		for _, obj := range c.Children {
			out = append(out, obj.Payload.RichText[0].Text.Content)
		}
	}
	return out
}

func TestPublish_SplitsIntoCeilingSizedCalls(t *testing.T) {
	for _, n := range []int{0, 1, 99, 100, 101, 200, 250} {
		t.Run(fmt.Sprintf("blocks=%d", n), func(t *testing.T) {
			host := &fakeHost{pageID: "1234-abcd", pageURL: "https://www.notion.so/Title-1234abcd"}
			pub := newTestPublisher(t, host)
			doc := numberedDocument(n)

			res, err := pub.Publish(context.Background(), "parent-id", "Title", doc)
			require.NoError(t, err)

			wantAppends := 0
			if n > MaxBlocksPerRequest {
				wantAppends = (n - MaxBlocksPerRequest + MaxBlocksPerRequest - 1) / MaxBlocksPerRequest
			}
			require.Len(t, host.calls, 1+wantAppends)
			assert.Equal(t, http.MethodPost, host.calls[0].Method)
			for _, c := range host.calls[1:] {
				assert.Equal(t, http.MethodPatch, c.Method)
				assert.LessOrEqual(t, len(c.Children), MaxBlocksPerRequest)
			}

			want := make([]string, 0, n)
			for i := 0; i < n; i++ {
				want = append(want, fmt.Sprintf("p-%d", i))
			}
			got := deliveredTexts(host.calls)
			if n == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, want, got)
			}

			assert.Equal(t, n, res.Delivered)
			assert.Equal(t, n, res.Total)
			assert.Equal(t, 1+wantAppends, res.Requests)
			assert.Equal(t, Plan(n)[0], len(host.calls[0].Children))
			assert.Len(t, Plan(n), 1+wantAppends)
		})
	}
}

func TestPublish_CreationRequestShape(t *testing.T) {
	host := &fakeHost{pageID: "abc"}
	pub := newTestPublisher(t, host)

	_, err := pub.Publish(context.Background(), "parent-123", "Daily summary", numberedDocument(1))
	require.NoError(t, err)

	require.Len(t, host.calls, 1)
	call := host.calls[0]
	assert.Equal(t, "/pages", call.Path)
	assert.Equal(t, "parent-123", call.Parent)
	assert.Equal(t, "Daily summary", call.Title)
	assert.Equal(t, "Bearer secret-token", call.Header.Get("Authorization"))
	assert.Equal(t, "application/json", call.Header.Get("Content-Type"))
	assert.Equal(t, "2022-06-28", call.Header.Get("Notion-Version"))
}

func TestPublish_URLFallbackStripsDashes(t *testing.T) {
	host := &fakeHost{pageID: "0123abcd-0000-1111-2222-333344445555"}
	pub := newTestPublisher(t, host)

	res, err := pub.Publish(context.Background(), "parent", "t", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://notion.so/0123abcd000011112222333344445555", res.URL)
}

func TestPublish_ReportedURLWins(t *testing.T) {
	host := &fakeHost{pageID: "abc", pageURL: "https://www.notion.so/t-abc"}
	pub := newTestPublisher(t, host)

	res, err := pub.Publish(context.Background(), "parent", "t", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://www.notion.so/t-abc", res.URL)
}

func TestPublish_CreationFailureAbortsBeforeAppends(t *testing.T) {
	host := &fakeHost{pageID: "abc", failCreate: true}
	pub := newTestPublisher(t, host)

	res, err := pub.Publish(context.Background(), "parent", "t", numberedDocument(150))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Len(t, host.calls, 1)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, "body failed validation", apiErr.Message)
	assert.Contains(t, err.Error(), "Notion API error (400)")
}

func TestPublish_AppendFailureLeavesPartialPage(t *testing.T) {
	host := &fakeHost{pageID: "abc", failAppend: 2}
	pub := newTestPublisher(t, host)

	res, err := pub.Publish(context.Background(), "parent", "t", numberedDocument(350))
	require.Error(t, err)
	require.NotNil(t, res)

	// create + first append succeed, second append fails, no further calls.
	assert.Len(t, host.calls, 3)
	assert.Equal(t, 200, res.Delivered)

	var partial *PartialPublishError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, "abc", partial.PageID)
	assert.Equal(t, 200, partial.Delivered)
	assert.Equal(t, 350, partial.Total)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
}

func TestPublish_CanceledContext(t *testing.T) {
	host := &fakeHost{pageID: "abc"}
	pub := newTestPublisher(t, host)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pub.Publish(ctx, "parent", "t", numberedDocument(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, host.calls)
}

func TestPlan(t *testing.T) {
	assert.Equal(t, []int{0}, Plan(0))
	assert.Equal(t, []int{100}, Plan(100))
	assert.Equal(t, []int{100, 1}, Plan(101))
	assert.Equal(t, []int{100, 100, 50}, Plan(250))
}
