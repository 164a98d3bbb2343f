// Package browser opens watch links outside the terminal.
package browser

import (
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/AnasZiaf26/Zapit/internal/config"
)

// Opener opens URLs in the configured browser or the system default
type Opener struct {
	command string   // configured browser command, empty for system default
	args    []string // additional arguments for the browser
	goos    string
	start   func(*exec.Cmd) error
	logger  *slog.Logger
}

// NewOpener creates a new Opener
func NewOpener(cfg config.BrowserConfig, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command: cfg.Command,
		args:    cfg.Args,
		goos:    runtime.GOOS,
		start:   (*exec.Cmd).Start,
		logger:  logger,
	}
}

// Open starts the browser on link without waiting for it
func (o *Opener) Open(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not a web link", link)
	}

	cmd := o.buildCommand(link)
	o.logger.Info("opening link", "command", cmd.Path, "url", link)
	if err := o.start(cmd); err != nil {
		return fmt.Errorf("failed to open link: %w", err)
	}
	return nil
}

// buildCommand builds the launch command for link
func (o *Opener) buildCommand(link string) *exec.Cmd {
	// Tier 1: User configured a specific browser
	if o.command != "" {
		args := append(append([]string{}, o.args...), link)
		return exec.Command(o.command, args...)
	}

	// Tier 2: System default handler
	switch o.goos {
	case "darwin":
		return exec.Command("open", link)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", link)
	default:
		// Linux and other Unix-like systems
		return exec.Command("xdg-open", link)
	}
}
