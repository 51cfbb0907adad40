package voice

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Utterance is one narration request.
type Utterance struct {
	Text  string
	Voice Voice
	Rate  float64
	Pitch float64
}

// Engine is a speech synthesis backend. Speak blocks until playback ends
// or ctx is cancelled, which kills the underlying process.
type Engine interface {
	Name() string
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, u Utterance) error
}

// Detect finds a usable engine on PATH. preferred ("say", "espeak-ng",
// "espeak") pins the choice; empty tries them in that order. Returns nil
// when the host has no speech synthesis.
func Detect(preferred string) Engine {
	candidates := []string{"say", "espeak-ng", "espeak"}
	if preferred != "" {
		candidates = []string{preferred}
	}

	for _, bin := range candidates {
		path, err := exec.LookPath(bin)
		if err != nil {
			continue
		}
		if bin == "say" {
			return &sayEngine{bin: path}
		}
		return &espeakEngine{name: bin, bin: path}
	}
	return nil
}

// sayEngine drives the macOS `say` command.
type sayEngine struct {
	bin string
}

func (e *sayEngine) Name() string { return "say" }

// say -v '?' lines look like:
//
//	Samantha            en_US    # Hello! My name is Samantha.
var sayVoiceLine = regexp.MustCompile(`^(.+?)\s{2,}([A-Za-z]{2}[_-][A-Za-z0-9-]+)\s`)

func (e *sayEngine) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, e.bin, "-v", "?").Output()
	if err != nil {
		return nil, fmt.Errorf("list say voices: %w", err)
	}
	return parseSayVoices(out), nil
}

func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := sayVoiceLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		voices = append(voices, Voice{Name: strings.TrimSpace(m[1]), Lang: m[2]})
	}
	return voices
}

func (e *sayEngine) Speak(ctx context.Context, u Utterance) error {
	// say has no pitch flag; pbas is its embedded baseline-pitch command
	// (default ~47). Rate maps onto words per minute (default ~175).
	text := fmt.Sprintf("[[ pbas %d ]] %s", int(47*u.Pitch), u.Text)
	args := []string{"-r", fmt.Sprintf("%d", int(175*u.Rate))}
	if u.Voice.Name != "" {
		args = append(args, "-v", u.Voice.Name)
	}
	args = append(args, text)

	return runSpeech(ctx, e.bin, args)
}

// espeakEngine drives espeak-ng (or classic espeak).
type espeakEngine struct {
	name string
	bin  string
}

func (e *espeakEngine) Name() string { return e.name }

func (e *espeakEngine) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, e.bin, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("list %s voices: %w", e.name, err)
	}
	return parseEspeakVoices(out), nil
}

func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first { // column header
			first = false
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		name := fields[3]
		// espeak reports gender in the Age/Gender column; fold it into
		// the name so the female-voice preference has something to match.
		if strings.HasSuffix(fields[2], "F") {
			name += " (female)"
		}
		voices = append(voices, Voice{Name: name, Lang: fields[1]})
	}
	return voices
}

func (e *espeakEngine) Speak(ctx context.Context, u Utterance) error {
	// espeak defaults: speed 175 wpm, pitch 50 on a 0-99 scale.
	args := []string{
		"-s", fmt.Sprintf("%d", int(175*u.Rate)),
		"-p", fmt.Sprintf("%d", int(50*u.Pitch)),
	}
	if u.Voice.Lang != "" {
		args = append(args, "-v", u.Voice.Lang)
	}
	args = append(args, u.Text)

	return runSpeech(ctx, e.bin, args)
}

func runSpeech(ctx context.Context, bin string, args []string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech command failed: %w", err)
	}
	return nil
}
