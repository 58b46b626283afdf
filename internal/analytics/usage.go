// Package analytics reports anonymous CLI usage events, ported in shape
// from the teacher's analytics package but renamed for this tool's
// commands and gated by --disable-metrics.
package analytics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

const (
	CheckCommand   = "executed_check_command"
	HoverCommand   = "executed_hover_command"
	QueryCommand   = "executed_query_command"
	CICommand      = "executed_ci_command"
	VersionCommand = "executed_version_command"
)

var (
	// PublicKey is the PostHog project key, set at build time via -ldflags.
	// Empty by default, which disables reporting even when metrics aren't
	// explicitly disabled.
	PublicKey     string
	enableMetrics bool
)

// Init gates ReportEvent on the CLI's --disable-metrics flag.
func Init(disableMetrics bool) {
	enableMetrics = !disableMetrics
}

func envFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".simplec", ".env"), nil
}

func createEnvFile() {
	envFile, err := envFilePath()
	if err != nil {
		fmt.Println("Error getting user home directory:", err)
		return
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(envFile), os.ModePerm); err != nil {
			fmt.Println("Error creating directory:", err)
			return
		}
		env := map[string]string{"uuid": uuid.New().String()}
		if err := godotenv.Write(env, envFile); err != nil {
			fmt.Println("Error writing to .env file:", err)
		}
	}
}

// LoadEnvFile ensures `$HOME/.simplec/.env` exists (creating it with a
// fresh anonymous id on first run) and loads it into the environment.
func LoadEnvFile() {
	createEnvFile()
	envFile, err := envFilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(envFile)
}

// ReportEvent fires a non-blocking usage event; any failure is logged and
// swallowed, never surfaced to the caller (telemetry must never fail a
// run).
func ReportEvent(event string) {
	if !enableMetrics || PublicKey == "" {
		return
	}
	client, err := posthog.NewWithConfig(PublicKey, posthog.Config{Endpoint: "https://us.i.posthog.com"})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer client.Close()
	if err := client.Enqueue(posthog.Capture{DistinctId: os.Getenv("uuid"), Event: event}); err != nil {
		fmt.Println(err)
	}
}
