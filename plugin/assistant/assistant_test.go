package assistant_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laksikaji/AI-Chatbot-for-UNAI/plugin/assistant"
)

func TestClient_Chat(t *testing.T) {
	t.Parallel()

	t.Run("sends the prompt and returns the minted thread id", func(t *testing.T) {
		t.Parallel()
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/assistant/chat/unai-chatbot", r.URL.Path)
			assert.Equal(t, "secret-key", r.Header.Get("Api-Key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message":   map[string]string{"role": "assistant", "content": "UNAI is a program."},
				"thread_id": "t-123",
			})
		}))
		defer srv.Close()

		client := assistant.NewClient(srv.URL, "secret-key", "unai-chatbot")
		reply, threadID, err := client.Chat(context.Background(), "What is UNAI?", "")
		require.NoError(t, err)
		assert.Equal(t, "UNAI is a program.", reply)
		assert.Equal(t, "t-123", threadID)

		messages, ok := gotBody["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 1)
		msg := messages[0].(map[string]any)
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "What is UNAI?", msg["content"])
		assert.NotContains(t, gotBody, "thread_id", "empty thread id is omitted")
	})

	t.Run("passes an existing thread id and does not report it back", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "t-existing", body["thread_id"])
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message":   map[string]string{"role": "assistant", "content": "ok"},
				"thread_id": "t-existing",
			})
		}))
		defer srv.Close()

		client := assistant.NewClient(srv.URL, "", "unai-chatbot")
		reply, threadID, err := client.Chat(context.Background(), "more", "t-existing")
		require.NoError(t, err)
		assert.Equal(t, "ok", reply)
		assert.Empty(t, threadID, "only newly minted ids are returned")
	})

	t.Run("non-2xx responses become errors carrying the body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := assistant.NewClient(srv.URL, "wrong", "unai-chatbot")
		_, _, err := client.Chat(context.Background(), "hello", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
		assert.Contains(t, err.Error(), "invalid api key")
	})

	t.Run("empty reply is an error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{}})
		}))
		defer srv.Close()

		client := assistant.NewClient(srv.URL, "", "unai-chatbot")
		_, _, err := client.Chat(context.Background(), "hello", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty reply")
	})
}

func TestClient_CreateThread(t *testing.T) {
	t.Parallel()

	t.Run("returns the new thread id", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/assistant/threads/unai-chatbot", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "t-new"})
		}))
		defer srv.Close()

		client := assistant.NewClient(srv.URL, "", "unai-chatbot")
		id, err := client.CreateThread(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "t-new", id)
	})

	t.Run("missing id is an error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()

		client := assistant.NewClient(srv.URL, "", "unai-chatbot")
		_, err := client.CreateThread(context.Background())
		require.Error(t, err)
	})
}

func TestClient_Files(t *testing.T) {
	t.Parallel()

	t.Run("upload streams multipart content", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/assistant/files/unai-chatbot", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "handbook.pdf", header.Filename)
			content, err := io.ReadAll(file)
			require.NoError(t, err)
			assert.Equal(t, "document body", string(content))
			_ = json.NewEncoder(w).Encode(assistant.File{ID: "f-1", Name: "handbook.pdf", Status: "processing"})
		}))
		defer srv.Close()

		client := assistant.NewClient(srv.URL, "", "unai-chatbot")
		f, err := client.UploadFile(context.Background(), "handbook.pdf", strings.NewReader("document body"))
		require.NoError(t, err)
		assert.Equal(t, "f-1", f.ID)
		assert.Equal(t, "processing", f.Status)
	})

	t.Run("list returns the assistant's documents", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"files": []assistant.File{
					{ID: "f-1", Name: "handbook.pdf", Status: "ready"},
					{ID: "f-2", Name: "fees.csv", Status: "processing"},
				},
			})
		}))
		defer srv.Close()

		client := assistant.NewClient(srv.URL, "", "unai-chatbot")
		files, err := client.ListFiles(context.Background())
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "handbook.pdf", files[0].Name)
	})

	t.Run("delete targets the file id", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/assistant/files/unai-chatbot/f-1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client := assistant.NewClient(srv.URL, "", "unai-chatbot")
		require.NoError(t, client.DeleteFile(context.Background(), "f-1"))
	})
}
