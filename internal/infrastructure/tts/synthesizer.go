// Package tts renders report text to an MP3 via an external speech command
// and ffmpeg.
package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"PaperCast/internal/config"
	"PaperCast/internal/ports"
)

// CommandSynthesizer writes the text to a temporary file, runs the speech
// command to produce a WAV, then transcodes it to the requested output with
// ffmpeg. Both temporary files are removed on every exit path.
type CommandSynthesizer struct {
	runner     ports.Runner
	speechCmd  string
	speechArgs []string
	ffmpegCmd  string
	logger     *slog.Logger
}

var _ ports.Synthesizer = (*CommandSynthesizer)(nil)

// NewCommandSynthesizer wires the runner and config. SpeechArgs may use the
// {input} and {output} placeholders for the text file and the WAV file.
func NewCommandSynthesizer(runner ports.Runner, cfg config.TTSConfig, logger *slog.Logger) *CommandSynthesizer {
	ffmpeg := cfg.FFmpegCommand
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &CommandSynthesizer{
		runner:     runner,
		speechCmd:  cfg.SpeechCommand,
		speechArgs: cfg.SpeechArgs,
		ffmpegCmd:  ffmpeg,
		logger:     logger,
	}
}

// Synthesize produces outputPath from text.
func (s *CommandSynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	if s.speechCmd == "" {
		return fmt.Errorf("speech command is not configured")
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to synthesize")
	}

	textFile, err := writeTemp("papercast-*.txt", []byte(text))
	if err != nil {
		return fmt.Errorf("stage report text: %w", err)
	}
	defer os.Remove(textFile)

	wavFile, err := writeTemp("papercast-*.wav", nil)
	if err != nil {
		return fmt.Errorf("stage wav file: %w", err)
	}
	defer os.Remove(wavFile)

	args := make([]string, 0, len(s.speechArgs))
	for _, arg := range s.speechArgs {
		arg = strings.ReplaceAll(arg, "{input}", textFile)
		arg = strings.ReplaceAll(arg, "{output}", wavFile)
		args = append(args, arg)
	}

	if _, err := s.runner.Run(ctx, s.speechCmd, args...); err != nil {
		return fmt.Errorf("speech synthesis: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("speech synthesis done, transcoding", "wav", wavFile, "output", outputPath)
	}

	if _, err := s.runner.Run(ctx, s.ffmpegCmd, "-y", "-i", wavFile, outputPath); err != nil {
		return fmt.Errorf("transcode to mp3: %w", err)
	}
	return nil
}

func writeTemp(pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	if len(data) > 0 {
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return "", err
		}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
