package console

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamoptimus/voicebot/client"
)

func TestVoiceConsole_FullTurn(t *testing.T) {
	var mu sync.Mutex
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()

		switch {
		case r.URL.Path == "/history/a1/1":
			fmt.Fprint(w, `{"history":[{"id":1,"user_query":"hi","bot_response":"hello"}]}`)
		case r.URL.Path == "/voice-chat/a1/1":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Equal(t, "en", r.FormValue("language"))
			files := r.MultipartForm.File["audio_file"]
			require.Len(t, files, 1)
			fmt.Fprint(w, `{"response":"namaste","transcription":"hello there","language":"hi"}`)
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithoutExecutor())
	defer c.Close()

	rec := &BufferRecorder{}
	var spoken bytes.Buffer
	v := NewVoiceConsole(c, rec, &WriterSpeaker{Out: &spoken})

	require.NoError(t, v.SelectAssistant(context.Background(), "a1", ""))
	require.Len(t, v.History(), 1)

	require.NoError(t, v.StartRecording())
	assert.Equal(t, Recording, v.State())
	_, err := rec.Write([]byte("opus-bytes"))
	require.NoError(t, err)

	turn, err := v.StopRecording(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Idle, v.State())
	assert.Equal(t, "hello there", v.Transcription())
	assert.Equal(t, "namaste", v.Response())
	assert.Equal(t, "hello there", turn.Transcription)

	// Server-detected language is adopted for subsequent turns.
	assert.Equal(t, "hi", v.Language())

	// The reply was synthesized with the detected language.
	assert.Equal(t, "[hi] namaste\n", spoken.String())

	// The history re-fetch is sequenced strictly after the upload.
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 3)
	assert.Equal(t, "GET /history/a1/1", requests[0])  // SelectAssistant
	assert.Equal(t, "POST /voice-chat/a1/1", requests[1])
	assert.Equal(t, "GET /history/a1/1", requests[2])  // after the turn
}

func TestVoiceConsole_StateMachine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"history":[]}`)
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithoutExecutor())
	defer c.Close()

	v := NewVoiceConsole(c, &BufferRecorder{}, nil)

	// No assistant selected yet.
	assert.ErrorIs(t, v.StartRecording(), ErrNoAssistant)

	require.NoError(t, v.SelectAssistant(context.Background(), "a1", "s1"))

	_, err := v.StopRecording(context.Background())
	assert.ErrorIs(t, err, ErrNotRecording)

	require.NoError(t, v.StartRecording())
	assert.ErrorIs(t, v.StartRecording(), ErrAlreadyRecording)
}

func TestVoiceConsole_UploadFailureReturnsToIdle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/history/a1/1" {
			fmt.Fprint(w, `{"history":[]}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail":"transcription failed"}`)
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithoutExecutor())
	defer c.Close()

	rec := &BufferRecorder{}
	v := NewVoiceConsole(c, rec, nil)
	require.NoError(t, v.SelectAssistant(context.Background(), "a1", ""))

	require.NoError(t, v.StartRecording())
	_, _ = rec.Write([]byte("bytes"))

	_, err := v.StopRecording(context.Background())
	require.Error(t, err)
	assert.Equal(t, Idle, v.State(), "console must be idle after a failed turn")
	assert.Empty(t, v.Transcription())

	// A fresh recording can start immediately.
	require.NoError(t, v.StartRecording())
}

func TestVoiceConsole_SetLanguage(t *testing.T) {
	c := client.New("http://localhost:1", client.WithoutExecutor())
	defer c.Close()

	v := NewVoiceConsole(c, &BufferRecorder{}, nil)
	assert.Equal(t, DefaultLanguage, v.Language())

	require.NoError(t, v.SetLanguage("ta"))
	assert.Equal(t, "ta", v.Language())

	assert.Error(t, v.SetLanguage("Tamil"))
	assert.Equal(t, "ta", v.Language(), "invalid code must not clobber the current one")
}
