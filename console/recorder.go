package console

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Recorder abstracts the audio capture source. The browser build of this
// product used MediaRecorder; here capture is environment-specific, so the
// console only requires start/stop semantics yielding a clip.
type Recorder interface {
	// Start begins capture. Calling Start while capturing is an error.
	Start() error
	// Stop ends capture and returns the recorded clip.
	Stop() (*Clip, error)
}

// Clip is one finished recording.
type Clip struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// Speaker abstracts speech synthesis for the assistant's reply, keyed by the
// language code the backend detected or the user declared.
type Speaker interface {
	Speak(text, language string) error
}

// FileRecorder replays a file from disk as the captured clip. It is what the
// CLI wires in: "recording" is selecting the file, "stopping" is reading it.
type FileRecorder struct {
	Path      string
	capturing bool
}

func (r *FileRecorder) Start() error {
	if r.capturing {
		return fmt.Errorf("already recording")
	}
	if _, err := os.Stat(r.Path); err != nil {
		return fmt.Errorf("audio file: %w", err)
	}
	r.capturing = true
	return nil
}

func (r *FileRecorder) Stop() (*Clip, error) {
	if !r.capturing {
		return nil, fmt.Errorf("not recording")
	}
	r.capturing = false

	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("audio file: %w", err)
	}
	return &Clip{
		Name:        filepath.Base(r.Path),
		ContentType: contentTypeFor(r.Path),
		Data:        bytes.NewReader(data),
	}, nil
}

// BufferRecorder captures whatever was written to it between Start and Stop.
// Tests and programmatic callers use it.
type BufferRecorder struct {
	buf       bytes.Buffer
	capturing bool
}

func (r *BufferRecorder) Start() error {
	if r.capturing {
		return fmt.Errorf("already recording")
	}
	r.buf.Reset()
	r.capturing = true
	return nil
}

// Write appends captured audio bytes; only valid while recording.
func (r *BufferRecorder) Write(p []byte) (int, error) {
	if !r.capturing {
		return 0, fmt.Errorf("not recording")
	}
	return r.buf.Write(p)
}

func (r *BufferRecorder) Stop() (*Clip, error) {
	if !r.capturing {
		return nil, fmt.Errorf("not recording")
	}
	r.capturing = false
	data := make([]byte, r.buf.Len())
	copy(data, r.buf.Bytes())
	return &Clip{
		Name:        "recording.m4a",
		ContentType: "audio/m4a",
		Data:        bytes.NewReader(data),
	}, nil
}

// WriterSpeaker renders the reply as text. It stands in where no synthesis
// backend is available, which is every headless environment.
type WriterSpeaker struct {
	Out io.Writer
}

func (s *WriterSpeaker) Speak(text, language string) error {
	_, err := fmt.Fprintf(s.Out, "[%s] %s\n", language, text)
	return err
}

func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	default:
		return "audio/m4a"
	}
}
