package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/violetrhodes/violet/pkg/config"
)

func executeCLI() error {
	root := buildRootCommand(true)
	return root.Execute()
}

func buildRootCommand(includeDocsCommand bool) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "violet",
		Short: "Companion chat client for the Violet Rhodes backend",
		Long: strings.TrimSpace(`violet is a terminal companion chat client.

Use CLI commands to onboard, chat interactively with typed-out replies and
optional speech, bridge conversations over Discord, or run a local
development backend.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")

	root.AddCommand(newOnboardCommand())
	root.AddCommand(newChatCommand())
	root.AddCommand(newGatewayCommand())
	root.AddCommand(newServeCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newVersionCommand())

	if includeDocsCommand {
		root.AddCommand(newDocsCommand(func() *cobra.Command { return buildRootCommand(false) }))
	}

	return root
}

func newOnboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "onboard",
		Short:   "Initialize ~/.violet config and data directory",
		Long:    "Create the default configuration file and data directory for a new violet installation.",
		Example: "  violet onboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return onboard()
		},
	}
}

func newChatCommand() *cobra.Command {
	var (
		message string
		noVoice bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with violet in the terminal",
		Long:  "Run an interactive session against the backend, or send a one-shot message.",
		Example: strings.Join([]string{
			"  violet chat",
			"  violet chat --no-voice",
			"  violet chat --message \"good morning\"",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(message, noVoice)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "One-shot message to send")
	cmd.Flags().BoolVar(&noVoice, "no-voice", false, "Disable speech narration for this session")

	return cmd
}

func newGatewayCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "gateway",
		Short:   "Bridge conversations over Discord",
		Long:    "Start channel adapters and route each sender through their own backend session.",
		Example: "  violet gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateway()
		},
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Run a local development backend",
		Long:    "Serve the /api/memory and /api/chat endpoints with canned replies and a SQLite memory store.",
		Example: "  violet serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show configuration and runtime readiness",
		Example: "  violet status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return statusCmd()
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show build/version metadata",
		Example: "  violet version",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion()
			return nil
		},
	}
}

func onboard() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists at %s\n", configPath)
		fmt.Print("Overwrite? (y/n): ")
		reader := bufio.NewReader(os.Stdin)
		response, readErr := reader.ReadString('\n')
		if readErr != nil {
			fmt.Println("Aborted.")
			return nil
		}
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(configPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	fmt.Printf("%s is ready!\n", appName)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Chat: violet chat")
	fmt.Println("  2. (Gateway mode) Add your Discord bot token to channels.discord.token in", configPath)
	fmt.Println("  3. (Offline) Run a local backend: violet serve, then set backend.url to http://localhost:8791")
	fmt.Println("  4. Check readiness: violet status")
	return nil
}

func statusCmd() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	configPath := getConfigPath()

	fmt.Printf("%s Status\n", appName)
	fmt.Printf("Version: %s\n", formatVersion())
	build, _ := formatBuildInfo()
	if build != "" {
		fmt.Printf("Build: %s\n", build)
	}
	fmt.Println()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Println("Config:", configPath, "✓")
	} else {
		fmt.Println("Config:", configPath, "✗ (run: violet onboard)")
	}

	if _, err := os.Stat(cfg.DataDir()); err == nil {
		fmt.Println("Data dir:", cfg.DataDir(), "✓")
	} else {
		fmt.Println("Data dir:", cfg.DataDir(), "✗")
	}

	identityDB := cfg.IdentityDBPath()
	if _, err := os.Stat(identityDB); err == nil {
		fmt.Println("Identity DB:", identityDB, "✓")
	} else {
		fmt.Println("Identity DB:", identityDB, "not initialized")
	}

	status := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "not set"
	}
	discordReady := strings.TrimSpace(cfg.Channels.Discord.Token) != ""

	fmt.Printf("Backend: %s\n", cfg.BackendURL())
	fmt.Println("Voice enabled:", status(cfg.Voice.Enabled))
	fmt.Println("Discord token:", status(discordReady))
	fmt.Println("Gateway ready:", status(discordReady))
	return nil
}
