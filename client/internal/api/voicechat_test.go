package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teamoptimus/voicebot/client/internal/types"
)

func TestVoiceChat_MultipartUpload(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/voice-chat/a1/s1" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("language"); got != "hi" {
			t.Fatalf("language = %q", got)
		}
		files := r.MultipartForm.File["audio_file"]
		if len(files) != 1 {
			t.Fatalf("expected one audio_file part, got %d", len(files))
		}
		if files[0].Filename != "clip.webm" {
			t.Fatalf("unexpected filename: %s", files[0].Filename)
		}
		if ct := files[0].Header.Get("Content-Type"); ct != "audio/webm" {
			t.Fatalf("unexpected part content type: %s", ct)
		}
		f, err := files[0].Open()
		if err != nil {
			t.Fatalf("open audio part: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "opus-bytes" {
			t.Fatalf("unexpected audio payload: %q", data)
		}
		fmt.Fprint(w, `{"response":"namaste","transcription":"hello","language":"hi"}`)
	}))
	defer srv.Close()

	turn, err := VoiceChat(context.Background(), srv.Client(), srv.URL, "a1", "s1", types.VoiceChatRequest{
		FileName:    "clip.webm",
		ContentType: "audio/webm",
		Audio:       strings.NewReader("opus-bytes"),
		Language:    "hi",
	})
	if err != nil {
		t.Fatalf("VoiceChat error: %v", err)
	}
	if turn.Transcription != "hello" || turn.Response != "namaste" || turn.Language != "hi" {
		t.Fatalf("unexpected turn: %+v", turn)
	}
}

func TestVoiceChat_DefaultsFileNameAndType(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		files := r.MultipartForm.File["audio_file"]
		if len(files) != 1 || files[0].Filename != "recording.m4a" {
			t.Fatalf("unexpected files: %+v", files)
		}
		if ct := files[0].Header.Get("Content-Type"); ct != "audio/m4a" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		fmt.Fprint(w, `{"response":"ok","transcription":"hey"}`)
	}))
	defer srv.Close()

	if _, err := VoiceChat(context.Background(), srv.Client(), srv.URL, "a1", "s1", types.VoiceChatRequest{
		Audio:    strings.NewReader("bytes"),
		Language: "en",
	}); err != nil {
		t.Fatalf("VoiceChat error: %v", err)
	}
}

func TestVoiceChat_Validation(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := VoiceChat(context.Background(), srv.Client(), srv.URL, "a1", "s1", types.VoiceChatRequest{
		Language: "en",
	}); err == nil {
		t.Fatal("expected error for missing audio")
	}
	if _, err := VoiceChat(context.Background(), srv.Client(), srv.URL, "a1", "s1", types.VoiceChatRequest{
		Audio:    strings.NewReader("bytes"),
		Language: "English",
	}); err == nil {
		t.Fatal("expected error for bad language code")
	}
}
