package inference

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/textcraft/internal/domain/generation"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientLoadAndGenerate(t *testing.T) {
	var (
		gotLoad     loadRequest
		gotGenerate generateRequest
		gotAuth     string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/v1/pipelines":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotLoad))
			_ = json.NewEncoder(w).Encode(map[string]string{"pipeline_id": "p-1"})
		case "/v1/pipelines/p-1/generate":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotGenerate))
			_, _ = w.Write([]byte(`[{"summary_text":"<pad>short summary"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", "secret", "/tmp/hf", time.Second, newTestLogger())
	require.NoError(t, err)

	ref := generation.ModelReference{Path: "artifacts/model", Tokenizer: "artifacts/tokenizer", Source: generation.SourceTrained}
	gen, err := client.Load(context.Background(), ref, generation.TaskSummarization)
	require.NoError(t, err)
	require.Equal(t, loadRequest{
		Task:      generation.TaskSummarization,
		Model:     "artifacts/model",
		Tokenizer: "artifacts/tokenizer",
		CacheDir:  "/tmp/hf",
	}, gotLoad)

	out, err := gen.Generate(context.Background(), "dialogue", generation.SummaryParameters())
	require.NoError(t, err)
	require.Equal(t, "<pad>short summary", out)
	require.Equal(t, "dialogue", gotGenerate.Inputs)
	require.Equal(t, generation.SummaryParameters(), gotGenerate.Parameters)
	require.Equal(t, "Bearer secret", gotAuth)
}

func TestClientGeneratedText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/pipelines" {
			_, _ = w.Write([]byte(`{"pipeline_id":"t5"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"generated_text":"reworded"}]`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", "", 0, newTestLogger())
	require.NoError(t, err)
	gen, err := client.Load(context.Background(), generation.ModelReference{Path: "t5-base"}, generation.TaskText2Text)
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), "paraphrase: text", generation.Parameters{MaxLength: 10})
	require.NoError(t, err)
	require.Equal(t, "reworded", out)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "load status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
			wantMsg: "status=404",
		},
		{
			name: "empty pipeline id",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			},
			wantMsg: "empty pipeline id",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			wantMsg: "decode response",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, err := NewClient(server.URL, "", "", time.Second, newTestLogger())
			require.NoError(t, err)
			_, err = client.Load(context.Background(), generation.ModelReference{Path: "m"}, generation.TaskSummarization)
			require.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestClientGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		wantMsg string
	}{
		{name: "server error", body: "CUDA out of memory", status: http.StatusInternalServerError, wantMsg: "CUDA out of memory"},
		{name: "no outputs", body: `[]`, status: http.StatusOK, wantMsg: "no outputs"},
		{name: "wrong field", body: `[{"generated_text":"x"}]`, status: http.StatusOK, wantMsg: "missing text"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/v1/pipelines" {
					_, _ = w.Write([]byte(`{"pipeline_id":"p"}`))
					return
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient(server.URL, "", "", time.Second, newTestLogger())
			require.NoError(t, err)
			gen, err := client.Load(context.Background(), generation.ModelReference{Path: "m"}, generation.TaskSummarization)
			require.NoError(t, err)
			_, err = gen.Generate(context.Background(), "in", generation.SummaryParameters())
			require.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("  ", "", "", time.Second, newTestLogger())
	require.Error(t, err)
}

func TestLeadEngine(t *testing.T) {
	engine := NewLeadEngine(newTestLogger())

	summarizer, err := engine.Load(context.Background(), generation.ModelReference{Path: "m"}, generation.TaskSummarization)
	require.NoError(t, err)
	out, err := summarizer.Generate(context.Background(),
		"The meeting started late. Everyone agreed on the plan. Then lunch arrived and",
		generation.Parameters{MaxLength: 10, MinLength: 3})
	require.NoError(t, err)
	require.Equal(t, "The meeting started late. Everyone agreed on the plan.", out)

	paraphraser, err := engine.Load(context.Background(), generation.ModelReference{Path: "t5-base"}, generation.TaskText2Text)
	require.NoError(t, err)
	out, err = paraphraser.Generate(context.Background(), "paraphrase: one two three four", generation.Parameters{MaxLength: 3})
	require.NoError(t, err)
	require.Equal(t, "one two three", out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = paraphraser.Generate(ctx, "paraphrase: x", generation.Parameters{})
	require.ErrorIs(t, err, context.Canceled)
}
