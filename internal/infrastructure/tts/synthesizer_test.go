package tts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"PaperCast/internal/config"
)

type recordedCall struct {
	name string
	args []string
}

type recordingRunner struct {
	calls []recordedCall
	fail  map[string]error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, recordedCall{name: name, args: args})
	if err := r.fail[name]; err != nil {
		return nil, err
	}
	return nil, nil
}

func testConfig() config.TTSConfig {
	return config.TTSConfig{
		SpeechCommand: "piper",
		SpeechArgs:    []string{"--file", "{input}", "--output_file", "{output}"},
		FFmpegCommand: "ffmpeg",
	}
}

func TestSynthesizeSubstitutesPlaceholdersAndTranscodes(t *testing.T) {
	runner := &recordingRunner{}
	synth := NewCommandSynthesizer(runner, testConfig(), nil)

	out := filepath.Join(t.TempDir(), "report.mp3")
	if err := synth.Synthesize(context.Background(), "hello world", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(runner.calls))
	}

	speech := runner.calls[0]
	if speech.name != "piper" {
		t.Fatalf("speech command = %q", speech.name)
	}
	if len(speech.args) != 4 || speech.args[0] != "--file" || speech.args[2] != "--output_file" {
		t.Fatalf("unexpected speech args %v", speech.args)
	}
	textFile, wavFile := speech.args[1], speech.args[3]
	if textFile == "{input}" || wavFile == "{output}" {
		t.Fatalf("placeholders not substituted: %v", speech.args)
	}

	ffmpeg := runner.calls[1]
	if ffmpeg.name != "ffmpeg" {
		t.Fatalf("transcode command = %q", ffmpeg.name)
	}
	want := []string{"-y", "-i", wavFile, out}
	for i, arg := range want {
		if ffmpeg.args[i] != arg {
			t.Fatalf("ffmpeg args = %v, want %v", ffmpeg.args, want)
		}
	}

	// Staged files are removed after the run.
	for _, path := range []string{textFile, wavFile} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("temp file %s should be removed", path)
		}
	}
}

func TestSynthesizeSpeechTextReachesCommand(t *testing.T) {
	var staged string
	runner := &recordingRunner{}
	synth := NewCommandSynthesizer(&inspectingRunner{inner: runner, onSpeech: func(textFile string) {
		data, err := os.ReadFile(textFile)
		if err != nil {
			t.Errorf("read staged text: %v", err)
			return
		}
		staged = string(data)
	}}, testConfig(), nil)

	if err := synth.Synthesize(context.Background(), "narrated report", filepath.Join(t.TempDir(), "o.mp3")); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if staged != "narrated report" {
		t.Fatalf("staged text = %q", staged)
	}
}

// inspectingRunner reads the staged text file while it still exists.
type inspectingRunner struct {
	inner    *recordingRunner
	onSpeech func(textFile string)
}

func (r *inspectingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if name == "piper" && len(args) > 1 {
		r.onSpeech(args[1])
	}
	return r.inner.Run(ctx, name, args...)
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	synth := NewCommandSynthesizer(&recordingRunner{}, testConfig(), nil)
	if err := synth.Synthesize(context.Background(), "   \n", "out.mp3"); err == nil {
		t.Fatal("expected error for blank text")
	}
}

func TestSynthesizeRequiresSpeechCommand(t *testing.T) {
	cfg := testConfig()
	cfg.SpeechCommand = ""
	synth := NewCommandSynthesizer(&recordingRunner{}, cfg, nil)
	if err := synth.Synthesize(context.Background(), "text", "out.mp3"); err == nil {
		t.Fatal("expected error for missing speech command")
	}
}

func TestSynthesizeSpeechFailureStopsBeforeTranscode(t *testing.T) {
	runner := &recordingRunner{fail: map[string]error{"piper": os.ErrPermission}}
	synth := NewCommandSynthesizer(runner, testConfig(), nil)

	if err := synth.Synthesize(context.Background(), "text", "out.mp3"); err == nil {
		t.Fatal("expected speech failure to surface")
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected no transcode after speech failure, got %d calls", len(runner.calls))
	}
}
