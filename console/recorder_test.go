package console

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecorder_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("riff-bytes"), 0o644))

	rec := &FileRecorder{Path: path}
	require.NoError(t, rec.Start())

	clip, err := rec.Stop()
	require.NoError(t, err)
	assert.Equal(t, "clip.wav", clip.Name)
	assert.Equal(t, "audio/wav", clip.ContentType)

	data, err := io.ReadAll(clip.Data)
	require.NoError(t, err)
	assert.Equal(t, "riff-bytes", string(data))
}

func TestFileRecorder_MissingFile(t *testing.T) {
	t.Parallel()
	rec := &FileRecorder{Path: filepath.Join(t.TempDir(), "absent.m4a")}
	assert.Error(t, rec.Start())
}

func TestFileRecorder_StopWithoutStart(t *testing.T) {
	t.Parallel()
	rec := &FileRecorder{Path: "whatever.m4a"}
	_, err := rec.Stop()
	assert.Error(t, err)
}

func TestBufferRecorder_CapturesBetweenStartAndStop(t *testing.T) {
	t.Parallel()
	rec := &BufferRecorder{}

	_, err := rec.Write([]byte("early"))
	assert.Error(t, err, "writes before Start are rejected")

	require.NoError(t, rec.Start())
	_, err = rec.Write([]byte("opus-"))
	require.NoError(t, err)
	_, err = rec.Write([]byte("bytes"))
	require.NoError(t, err)

	clip, err := rec.Stop()
	require.NoError(t, err)
	data, _ := io.ReadAll(clip.Data)
	assert.Equal(t, "opus-bytes", string(data))

	// Restarting clears the previous capture.
	require.NoError(t, rec.Start())
	clip, err = rec.Stop()
	require.NoError(t, err)
	data, _ = io.ReadAll(clip.Data)
	assert.Empty(t, data)
}

func TestWriterSpeaker(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	s := &WriterSpeaker{Out: &out}
	require.NoError(t, s.Speak("hello", "en"))
	assert.Equal(t, "[en] hello\n", out.String())
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "audio/wav", contentTypeFor("a.wav"))
	assert.Equal(t, "audio/mpeg", contentTypeFor("a.mp3"))
	assert.Equal(t, "audio/ogg", contentTypeFor("a.ogg"))
	assert.Equal(t, "audio/m4a", contentTypeFor("a.m4a"))
	assert.Equal(t, "audio/m4a", contentTypeFor("noext"))
}
