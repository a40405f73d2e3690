package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(nil, "", "o/r", WithHTTPClient(srv.Client()), WithBaseURL(srv.URL))
	require.NoError(t, err)
	return client
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		in        string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{in: "owner/repo", wantOwner: "owner", wantName: "repo"},
		{in: " owner/repo ", wantOwner: "owner", wantName: "repo"},
		{in: "", wantErr: true},
		{in: "owner", wantErr: true},
		{in: "owner/", wantErr: true},
		{in: "a/b/c", wantErr: true},
	}

	for _, tt := range tests {
		owner, name, err := SplitRepo(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "SplitRepo(%q)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.wantOwner, owner)
		assert.Equal(t, tt.wantName, name)
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(nil, " ", "o/r")
	require.Error(t, err)
}

func TestListComments_FollowsPagination(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/repos/o/r/issues/5/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/o/r/issues/5/comments?page=2&per_page=100>; rel="next"`, srvURL))
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": 1, "body": "first", "user": map[string]any{"login": "alice"}},
			})
		case "2":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": 2, "body": "second", "html_url": "https://github.com/o/r/pull/5#issuecomment-2"},
			})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	client, err := NewClient(nil, "", "o/r", WithHTTPClient(srv.Client()), WithBaseURL(srv.URL))
	require.NoError(t, err)

	comments, err := client.ListComments(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, int64(1), comments[0].ID)
	assert.Equal(t, "alice", comments[0].Author)
	assert.Equal(t, "second", comments[1].Body)
	assert.Equal(t, "https://github.com/o/r/pull/5#issuecomment-2", comments[1].URL)
}

func TestListComments_RejectsNonPositiveNumber(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	_, err := client.ListComments(context.Background(), 0)
	require.Error(t, err)
}

func TestCreateAndUpdateComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/o/r/issues/9/comments", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello", payload["body"])
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 77, "body": payload["body"]})
	})
	mux.HandleFunc("/repos/o/r/issues/comments/77", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"body":"updated"}`, string(raw))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 77, "body": "updated"})
	})

	client := newTestClient(t, mux)

	created, err := client.CreateComment(context.Background(), 9, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(77), created.ID)

	updated, err := client.UpdateComment(context.Background(), created.ID, "updated")
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Body)
}

func TestStatusCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/o/r/issues/3/comments", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Resource not accessible by integration"}`))
	})

	client := newTestClient(t, mux)

	_, err := client.ListComments(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	assert.Contains(t, err.Error(), "Resource not accessible by integration")
	assert.Equal(t, 0, StatusCode(fmt.Errorf("plain")))
}
