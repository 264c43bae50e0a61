package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Terminal identifies a way of opening a shell in a directory.
type Terminal string

const (
	Tmux          Terminal = "tmux"
	AppleTerminal Terminal = "terminal"
	ITerm2        Terminal = "iterm2"
	Warp          Terminal = "warp"
	Ghostty       Terminal = "ghostty"
	VSCode        Terminal = "vscode"
	GnomeTerminal Terminal = "gnome-terminal"
	Konsole       Terminal = "konsole"
	Xfce4Terminal Terminal = "xfce4-terminal"
	Kitty         Terminal = "kitty"
	Alacritty     Terminal = "alacritty"
	// None disables launching.
	None Terminal = "none"
)

// FromString parses a configured terminal name, accepting common aliases.
// Unknown names are an error so a typo in settings surfaces instead of
// silently not launching.
func FromString(s string) (Terminal, error) {
	switch strings.ToLower(s) {
	case "":
		return None, nil
	case "tmux":
		return Tmux, nil
	case "terminal", "terminal.app", "apple_terminal":
		return AppleTerminal, nil
	case "iterm", "iterm2":
		return ITerm2, nil
	case "warp":
		return Warp, nil
	case "ghostty":
		return Ghostty, nil
	case "vscode", "code":
		return VSCode, nil
	case "gnome-terminal", "gnome":
		return GnomeTerminal, nil
	case "konsole":
		return Konsole, nil
	case "xfce4-terminal", "xfce":
		return Xfce4Terminal, nil
	case "kitty":
		return Kitty, nil
	case "alacritty":
		return Alacritty, nil
	case "none":
		return None, nil
	default:
		return None, fmt.Errorf("unknown terminal %q", s)
	}
}

// Detect picks a terminal from the environment: the surrounding terminal
// program when TERM_PROGRAM names one, otherwise the first installed
// emulator found on PATH, otherwise None.
func Detect() Terminal {
	if os.Getenv("TMUX") != "" {
		return Tmux
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "Apple_Terminal":
		return AppleTerminal
	case "iTerm.app":
		return ITerm2
	case "WarpTerminal":
		return Warp
	case "ghostty":
		return Ghostty
	case "vscode":
		return VSCode
	}
	for _, t := range []Terminal{Tmux, GnomeTerminal, Konsole, Xfce4Terminal, Kitty, Alacritty} {
		if _, err := exec.LookPath(string(t)); err == nil {
			return t
		}
	}
	return None
}

// SessionName returns the tmux session name for a worktree.
func SessionName(project, name string) string {
	return project + "-" + name
}

// Launch opens a shell in dir using the given terminal. Tmux sessions are
// created detached; the user attaches or switches at their leisure. The
// returned error is informational; callers report it and carry on.
func Launch(term Terminal, project, name, dir string) error {
	switch term {
	case Tmux:
		return launchTmux(SessionName(project, name), dir)
	case AppleTerminal:
		return runOSAScript(fmt.Sprintf(
			"tell application \"Terminal\"\n\tdo script \"cd %s\"\n\tactivate\nend tell", shellEscape(dir)))
	case ITerm2:
		return runOSAScript(fmt.Sprintf(
			"tell application \"iTerm2\"\n\tcreate window with default profile command \"cd %s\"\nend tell", shellEscape(dir)))
	case Warp, Ghostty:
		return run("open", "-a", appName(term), dir)
	case VSCode:
		return run("code", dir)
	case GnomeTerminal:
		return run("gnome-terminal", "--working-directory", dir)
	case Konsole:
		return run("konsole", "--workdir", dir)
	case Xfce4Terminal:
		return run("xfce4-terminal", "--working-directory", dir)
	case Kitty:
		return run("kitty", "--detach", "--directory", dir)
	case Alacritty:
		return run("alacritty", "--working-directory", dir)
	case None:
		return nil
	default:
		return fmt.Errorf("unknown terminal %q", term)
	}
}

func appName(term Terminal) string {
	switch term {
	case Warp:
		return "Warp"
	case Ghostty:
		return "Ghostty"
	default:
		return string(term)
	}
}

func runOSAScript(script string) error {
	return run("osascript", "-e", script)
}

func launchTmux(sessionName, dir string) error {
	if SessionExists(sessionName) {
		return nil
	}
	return run("tmux", "new-session", "-d", "-s", sessionName, "-c", dir)
}

// SessionExists reports whether a tmux session with the given name is
// running.
func SessionExists(sessionName string) bool {
	return exec.Command("tmux", "has-session", "-t", sessionName).Run() == nil
}

// KillSession tears down the worktree's tmux session if one is running.
// A missing session or missing tmux binary is not an error. Reports
// whether a session was killed.
func KillSession(sessionName string) (bool, error) {
	if _, err := exec.LookPath("tmux"); err != nil {
		return false, nil
	}
	if !SessionExists(sessionName) {
		return false, nil
	}
	if err := run("tmux", "kill-session", "-t", sessionName); err != nil {
		return false, err
	}
	return true, nil
}

func run(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not available: %w", name, err)
	}
	if out, err := exec.Command(name, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %v: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// shellEscape single-quotes a path for embedding in an AppleScript shell
// command.
func shellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
