// Package devcontext inspects the development environment around a project
// directory: git state and the technologies the project uses. The result is
// folded into prompts so the assistant knows what it is working on.
package devcontext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// gitTimeout bounds each git invocation
const gitTimeout = 2 * time.Second

// GitInfo describes the repository state of a project directory
type GitInfo struct {
	Branch         string   `json:"branch"`
	RecentCommits  []string `json:"recent_commits"`
	HasUncommitted bool     `json:"has_uncommitted_changes"`
	ModifiedFiles  []string `json:"modified_files"`
}

// ProjectInfo describes the project layout and detected technologies
type ProjectInfo struct {
	Root         string   `json:"root"`
	Technologies []string `json:"technologies"`
}

// Context is a snapshot of the development environment taken at startup
type Context struct {
	Root    string       `json:"root"`
	Git     *GitInfo     `json:"git,omitempty"`
	Project *ProjectInfo `json:"project"`
}

// techIndicators maps marker files to the technology they imply
var techIndicators = []struct {
	marker string
	tech   string
}{
	{"go.mod", "Go"},
	{"package.json", "Node.js/JavaScript"},
	{"tsconfig.json", "TypeScript"},
	{"requirements.txt", "Python"},
	{"Cargo.toml", "Rust"},
	{"pom.xml", "Java/Maven"},
	{"build.gradle", "Java/Gradle"},
	{"Dockerfile", "Docker"},
	{"docker-compose.yml", "Docker Compose"},
	{".github/workflows", "GitHub Actions"},
}

// Analyze inspects root and returns the development context. Outside a git
// repository the Git field is nil and the rest is still populated.
func Analyze(ctx context.Context, root string, logger zerolog.Logger) *Context {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	out := &Context{
		Root:    abs,
		Project: analyzeProject(abs),
	}

	git, err := gitInfo(ctx, abs)
	if err != nil {
		logger.Debug().
			Str("root", abs).
			Err(err).
			Msg("Git information unavailable")
	} else {
		out.Git = git
	}

	return out
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

func gitInfo(ctx context.Context, dir string) (*GitInfo, error) {
	branch, err := runGit(ctx, dir, "branch", "--show-current")
	if err != nil {
		return nil, err
	}

	info := &GitInfo{Branch: branch}

	if log, err := runGit(ctx, dir, "log", "--oneline", "-5"); err == nil && log != "" {
		info.RecentCommits = strings.Split(log, "\n")
	}

	if status, err := runGit(ctx, dir, "status", "--porcelain"); err == nil && status != "" {
		info.HasUncommitted = true
		for _, line := range strings.Split(status, "\n") {
			if len(line) > 3 {
				info.ModifiedFiles = append(info.ModifiedFiles, line[3:])
			}
		}
	}

	return info, nil
}

func analyzeProject(root string) *ProjectInfo {
	info := &ProjectInfo{Root: root}

	for _, indicator := range techIndicators {
		if _, err := os.Stat(filepath.Join(root, indicator.marker)); err == nil {
			info.Technologies = append(info.Technologies, indicator.tech)
		}
	}

	return info
}

// Summary renders a human-readable context block for prompt injection
func (c *Context) Summary() string {
	lines := []string{
		fmt.Sprintf("Project: %s", filepath.Base(c.Root)),
		fmt.Sprintf("Location: %s", c.Root),
	}

	if c.Project != nil && len(c.Project.Technologies) > 0 {
		lines = append(lines, fmt.Sprintf("Technologies: %s", strings.Join(c.Project.Technologies, ", ")))
	}

	if c.Git != nil {
		lines = append(lines, fmt.Sprintf("Git branch: %s", c.Git.Branch))
		if c.Git.HasUncommitted {
			lines = append(lines, fmt.Sprintf("Modified files: %d", len(c.Git.ModifiedFiles)))
		}
	}

	return strings.Join(lines, "\n")
}
