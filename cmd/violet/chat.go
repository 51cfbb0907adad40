package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/violetrhodes/violet/pkg/chat"
	"github.com/violetrhodes/violet/pkg/identity"
	"github.com/violetrhodes/violet/pkg/memory"
	"github.com/violetrhodes/violet/pkg/transcript"
	"github.com/violetrhodes/violet/pkg/turn"
	"github.com/violetrhodes/violet/pkg/voice"
)

// consoleView adapts the transcript renderer to the turn controller's
// view surface.
type consoleView struct {
	r *transcript.Renderer
}

func (v *consoleView) AppendStatic(sender, text string) { v.r.AppendStatic(sender, text) }
func (v *consoleView) Reveal(sender, fullText string, media *chat.Media) {
	v.r.Reveal(sender, fullText, media)
}
func (v *consoleView) SetTyping(active bool) { v.r.SetTyping(active) }

func runChat(message string, noVoice bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := identity.Open(cfg.IdentityDBPath())
	if err != nil {
		fmt.Printf("Warning: identity store unavailable (%v), using a session-only id\n", err)
		store = nil
	}
	defer store.Close()
	userID := store.UserID()

	var narrator *voice.Narrator
	if cfg.Voice.Enabled && !noVoice {
		narrator = voice.NewNarrator(voice.Detect(cfg.Voice.Engine), cfg.Voice.Rate, cfg.Voice.Pitch)
		defer narrator.Stop()
	}

	minDelay, maxDelay := cfg.TypingDelayBounds()
	opts := []transcript.Option{transcript.WithDelayBounds(minDelay, maxDelay)}
	if narrator != nil {
		opts = append(opts, transcript.WithNarration(narrator.Narrate, cfg.Voice.AutoPlay))
	}
	renderer := transcript.NewRenderer(os.Stdout, turn.AssistantName, opts...)

	backend := chat.NewClient(cfg.BackendURL(), cfg.BackendTimeout())
	memStore := memory.NewClient(cfg.BackendURL())
	controller := turn.NewController(userID, backend, memStore, &consoleView{r: renderer})
	defer controller.Flush()

	ctx := context.Background()
	controller.Bootstrap(ctx)

	if strings.TrimSpace(message) != "" {
		if err := controller.Submit(ctx, message); err != nil {
			return err
		}
		return nil
	}

	fmt.Println("(exit or Ctrl+C to leave, /play to hear the last reply)")
	fmt.Println()
	interactiveMode(ctx, controller, renderer)
	return nil
}

func interactiveMode(ctx context.Context, controller *turn.Controller, renderer *transcript.Renderer) {
	prompt := fmt.Sprintf("%s: ", turn.UserName)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), ".violet_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		fmt.Println("Falling back to simple input mode...")
		simpleInteractiveMode(ctx, controller, renderer)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nbye 💜")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		if !handleInput(ctx, controller, renderer, line) {
			return
		}
	}
}

func simpleInteractiveMode(ctx context.Context, controller *turn.Controller, renderer *transcript.Renderer) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("%s: ", turn.UserName)
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\nbye 💜")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		if !handleInput(ctx, controller, renderer, line) {
			return
		}
	}
}

// handleInput runs one REPL iteration; false means leave the loop.
func handleInput(ctx context.Context, controller *turn.Controller, renderer *transcript.Renderer, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	switch input {
	case "exit", "quit":
		fmt.Println("bye 💜")
		return false
	case "/play":
		renderer.Replay()
		return true
	}

	if err := controller.Submit(ctx, input); err != nil {
		if errors.Is(err, turn.ErrEmptyInput) {
			return true
		}
		fmt.Printf("Error: %v\n", err)
	}
	return true
}
