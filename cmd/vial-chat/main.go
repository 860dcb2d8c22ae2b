// ABOUTME: Entry point for the vial-chat terminal client
// ABOUTME: Wires config, store backend, responder, and the conversation engine

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/innovaedu/vial-chat/internal/config"
	"github.com/innovaedu/vial-chat/internal/conversation"
	"github.com/innovaedu/vial-chat/internal/responder"
	"github.com/innovaedu/vial-chat/internal/session"
	"github.com/innovaedu/vial-chat/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
        _       _        _           _
 __   _(_) __ _| |   ___| |__   __ _| |_
 \ \ / / |/ _' | |  / __| '_ \ / _' | __|
  \ V /| | (_| | | | (__| | | | (_| | |_
   \_/ |_|\__,_|_|  \___|_| |_|\__,_|\__|
`

// getConfigPath returns the path to the client config file.
// Priority: VIAL_CHAT_CONFIG env var > XDG_CONFIG_HOME/vial-chat/config.yaml > ~/.config/vial-chat/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("VIAL_CHAT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "vial-chat", "config.yaml")
}

// getDataPath returns the path to the vial-chat data directory.
// Priority: XDG_DATA_HOME/vial-chat > ~/.local/share/vial-chat
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "vial-chat")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: vial-chat <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  chat     Start an interactive chat session")
		fmt.Println("  history  Print the stored conversation history")
		fmt.Println("  clear    Delete the stored conversation history")
		fmt.Println("  init     Create a new config file interactively")
		fmt.Println()
		fmt.Println("Identity flags (chat, history, clear):")
		fmt.Println("  --token TOKEN  Identity from a signed ID token")
		fmt.Println("  --user ID      Identity from a plain user id")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "chat":
		err = runChat(ctx)
	case "history":
		err = runHistory(ctx)
	case "clear":
		err = runClear(ctx)
	case "init":
		err = runInit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// identityFromArgs resolves the acting user from --token or --user flags.
// Supports both "--flag value" and "--flag=value" formats.
func identityFromArgs(args []string) (*session.User, error) {
	var token, userID string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--token" || arg == "-t":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--token requires a value")
			}
			token = args[i+1]
			i++
		case strings.HasPrefix(arg, "--token="):
			token = strings.TrimPrefix(arg, "--token=")
		case arg == "--user" || arg == "-u":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--user requires a value")
			}
			userID = args[i+1]
			i++
		case strings.HasPrefix(arg, "--user="):
			userID = strings.TrimPrefix(arg, "--user=")
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag: %s", arg)
		default:
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	switch {
	case token != "":
		user, err := session.FromIDToken(token)
		if err != nil {
			return nil, fmt.Errorf("resolving identity from token: %w", err)
		}
		return &user, nil
	case userID != "":
		return &session.User{ID: userID}, nil
	default:
		return nil, fmt.Errorf("an identity is required: pass --token or --user")
	}
}

// openStore builds the configured store backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "firestore":
		return store.NewFirestoreStore(ctx, cfg.Store.ProjectID, cfg.Store.Collection, cfg.Store.CredentialsFile)
	default:
		path := cfg.Store.Path
		if path == "" {
			path = filepath.Join(getDataPath(), "chat.db")
		}
		return store.NewSQLiteStore(path)
	}
}

func runChat(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	user, err := identityFromArgs(os.Args[2:])
	if err != nil {
		return err
	}

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Store:     %s\n", cfg.Store.Backend)
	green.Print("    ▶ ")
	fmt.Printf("Responder: %s\n", cfg.Responder.URL)
	green.Print("    ▶ ")
	fmt.Printf("User:      %s\n", user.ID)
	fmt.Println()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	resp := responder.New(cfg.Responder.URL, cfg.Responder.Timeout, logger)
	sessions := session.NewStaticProvider(user)

	eng := conversation.New(st, resp, sessions, logger)
	eng.Start(ctx)

	updates, _ := eng.Subscribe(ctx)

	// Render snapshots in the background; the main goroutine owns stdin.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		renderSnapshots(updates)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/q":
			fmt.Println("bye")
			return nil
		case "/clear":
			eng.Clear(ctx)
		default:
			eng.Send(ctx, line)
		}

		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		default:
		}
	}

	wg.Wait()
	return scanner.Err()
}

// renderSnapshots prints messages newly appended since the last snapshot.
// Snapshots are full state, so rendering is a diff against the seen count;
// a clear or reload shrinks the list and the count resets with it.
func renderSnapshots(updates <-chan conversation.Snapshot) {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	seen := 0
	for snap := range updates {
		if snap.LoadErr != nil {
			red.Printf("! %v\n", snap.LoadErr)
		}

		if len(snap.Messages) < seen {
			seen = 0
			gray.Println("--- conversation cleared ---")
		}
		for _, msg := range snap.Messages[seen:] {
			switch msg.Sender {
			case store.SenderUser:
				cyan.Print("you> ")
			default:
				green.Print("bot> ")
			}
			fmt.Println(msg.Text)
		}
		seen = len(snap.Messages)
	}
}

func runHistory(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	user, err := identityFromArgs(os.Args[2:])
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	records, err := st.LoadAll(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	// Store order is unspecified; chronological order is computed here
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	for _, rec := range records {
		gray.Printf("%s ", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if rec.Sender == store.SenderUser {
			cyan.Print("you> ")
		} else {
			green.Print("bot> ")
		}
		fmt.Println(rec.Text)
	}

	gray.Printf("\n%d messages\n", len(records))
	return nil
}

func runClear(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	user, err := identityFromArgs(os.Args[2:])
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	answer := prompt(reader, fmt.Sprintf("Delete all messages for %s?", user.ID), "no")
	if strings.ToLower(answer) != "yes" && strings.ToLower(answer) != "y" {
		fmt.Println("Aborted.")
		return nil
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if err := st.DeleteAll(ctx, user.ID); err != nil {
		return fmt.Errorf("some messages could not be deleted: %w", err)
	}

	fmt.Println("History cleared.")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("vial-chat configuration setup")
	fmt.Println("=============================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDbPath := filepath.Join(getDataPath(), "chat.db")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Store
	fmt.Println("\n--- Store Configuration ---")
	backend := prompt(reader, "Store backend (sqlite/firestore)", "sqlite")

	var dbPath, projectID, credentialsFile, collection string
	if backend == "firestore" {
		projectID = prompt(reader, "Firestore project id", "")
		credentialsFile = prompt(reader, "Service account key file (leave empty for ADC)", "")
		collection = prompt(reader, "Collection name", store.DefaultCollection)
	} else {
		dbPath = prompt(reader, "SQLite database path", defaultDbPath)
	}

	// Responder
	fmt.Println("\n--- Responder Configuration ---")
	responderURL := prompt(reader, "Responder URL", "http://localhost:8000/chat")
	responderTimeout := prompt(reader, "Request timeout", "30s")

	// Voice
	fmt.Println("\n--- Voice Configuration ---")
	locale := prompt(reader, "Recognition locale", "es-ES")
	settleDelay := prompt(reader, "Auto-send settle delay", "300ms")

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# vial-chat configuration\n")
	cfg.WriteString("# Generated by vial-chat init\n\n")

	cfg.WriteString("store:\n")
	cfg.WriteString(fmt.Sprintf("  backend: \"%s\"\n", backend))
	if backend == "firestore" {
		cfg.WriteString(fmt.Sprintf("  project_id: \"%s\"\n", projectID))
		if credentialsFile != "" {
			cfg.WriteString(fmt.Sprintf("  credentials_file: \"%s\"\n", credentialsFile))
		}
		cfg.WriteString(fmt.Sprintf("  collection: \"%s\"\n", collection))
	} else {
		cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	}
	cfg.WriteString("\n")

	cfg.WriteString("responder:\n")
	cfg.WriteString(fmt.Sprintf("  url: \"%s\"\n", responderURL))
	cfg.WriteString(fmt.Sprintf("  timeout: \"%s\"\n", responderTimeout))
	cfg.WriteString("\n")

	cfg.WriteString("voice:\n")
	cfg.WriteString(fmt.Sprintf("  locale: \"%s\"\n", locale))
	cfg.WriteString(fmt.Sprintf("  settle_delay: \"%s\"\n", settleDelay))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	if backend != "firestore" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start chatting:")
	fmt.Printf("  vial-chat chat --user YOUR_ID\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
