// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// workspace-launcher serves the workspace launcher API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ruangustavo/workspace-launcher/internal/app"
	"github.com/ruangustavo/workspace-launcher/internal/config"
)

var (
	version = "0.1.0"
)

func main() {
	// A .env next to the binary's working directory may set LAUNCHER_*
	// variables; it is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to read .env: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		configPath  string
		host        string
		port        int
		dataDir     string
		storageURL  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file (default: auto-detect)")
	flag.StringVar(&configPath, "c", "", "Path to config file (short)")
	flag.StringVar(&host, "host", "", "HTTP server host (overrides config)")
	flag.IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	flag.StringVar(&dataDir, "data-dir", "", "Data directory (overrides config)")
	flag.StringVar(&storageURL, "storage", "", "Storage URL: file:<path>, sqlite:<path> or mem: (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&showVersion, "v", false, "Show version (short)")
	flag.Parse()

	if showVersion {
		fmt.Printf("workspace-launcher %s\n", version)
		os.Exit(0)
	}

	if configPath == "" {
		configPath = findConfig()
	}
	if configPath != "" {
		log.Printf("Using config: %s", configPath)
	} else {
		log.Printf("No config file found, using defaults")
	}

	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Host:       host,
		Port:       port,
		DataDir:    firstNonEmpty(dataDir, os.Getenv("LAUNCHER_DATA_DIR")),
		StorageURL: firstNonEmpty(storageURL, os.Getenv("LAUNCHER_STORAGE")),
		Version:    version,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("App error: %v", err)
	}
}

// findConfig looks at $LAUNCHER_CONFIG, then the working directory, then
// the user config directory. An empty result means built-in defaults.
func findConfig() string {
	if env := os.Getenv("LAUNCHER_CONFIG"); env != "" {
		return env
	}

	loader := config.NewLoader()
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "workspace-launcher"))
	}
	for _, dir := range dirs {
		if found, err := loader.FindConfig(dir); err == nil {
			return found
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// runInit handles the "workspace-launcher init" command.
func runInit() error {
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	showHelp := initFlags.Bool("help", false, "Show help for init command")
	initFlags.BoolVar(showHelp, "h", false, "Show help for init command")
	initFlags.Parse(os.Args[2:])

	if *showHelp {
		fmt.Println(`Usage: workspace-launcher init [options]

Create a commented launcher.hjson configuration file in the current
directory.

Options:
  -h, -help    Show this help message

The command will ask about:
  - Server port (defaults to 4646)
  - Storage (json file, yaml file or sqlite)
  - Completion timeout for launches`)
		return nil
	}

	configFile := "launcher.hjson"
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use a different directory", configFile)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Workspace Launcher Configuration Setup")
	fmt.Println("======================================")
	fmt.Println()

	port := config.DefaultPort
	if s := prompt(reader, "Server port", strconv.Itoa(port)); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("invalid port: %s", s)
		}
		port = p
	}

	var storageURL string
	switch strings.ToLower(prompt(reader, "Storage (json, yaml, sqlite)", "json")) {
	case "json":
	case "yaml", "yml":
		storageURL = "file:workspaces/workspaces.yaml"
	case "sqlite":
		storageURL = "sqlite:workspaces/workspaces.db"
	default:
		return fmt.Errorf("unknown storage kind")
	}

	timeout := prompt(reader, "Launch completion timeout (0 disables)", config.DefaultCompletionTimeout.String())
	if timeout != "0" {
		if _, err := time.ParseDuration(timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}
	}

	if err := os.WriteFile(configFile, []byte(generateConfig(port, storageURL, timeout)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", configFile, err)
	}

	fmt.Println()
	fmt.Printf("Created %s\n", configFile)
	fmt.Println("Run: workspace-launcher")
	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultVal
	}
	return line
}

func generateConfig(port int, storageURL, timeout string) string {
	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString("  server: {\n")
	fmt.Fprintf(&b, "    port: %d\n", port)
	b.WriteString("    // Listen on loopback only; the API can start programs.\n")
	b.WriteString("    host: 127.0.0.1\n")
	b.WriteString("  }\n\n")
	b.WriteString("  // Defaults to $XDG_DATA_HOME/workspace-launcher.\n")
	b.WriteString("  // data_dir: \"{{.Home}}/.local/share/workspace-launcher\"\n\n")
	b.WriteString("  storage: {\n")
	b.WriteString("    // file:<path> (json or yaml by extension), sqlite:<path> or mem:\n")
	b.WriteString("    // Relative paths are resolved against data_dir.\n")
	if storageURL == "" {
		b.WriteString("    // url: \"file:workspaces/workspaces.json\"\n")
	} else {
		fmt.Fprintf(&b, "    url: %q\n", storageURL)
	}
	b.WriteString("  }\n\n")
	b.WriteString("  launch: {\n")
	fmt.Fprintf(&b, "    completion_timeout: %q\n", timeout)
	b.WriteString("    // Wait between apps that have no delay of their own.\n")
	b.WriteString("    // default_delay: \"500ms\"\n")
	b.WriteString("  }\n\n")
	b.WriteString("  // Reload when the workspace file is edited by hand.\n")
	b.WriteString("  watch: {\n")
	b.WriteString("    enabled: true\n")
	b.WriteString("    debounce: 250ms\n")
	b.WriteString("  }\n")
	b.WriteString("}\n")
	return b.String()
}
