// Package textsource turns project documents into plain text for the
// detail extractor.
package textsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/consulta-proyectos/internal/common"
	"github.com/Veraticus/consulta-proyectos/internal/service"
	"github.com/Veraticus/consulta-proyectos/internal/textutil"
)

// FilePlaceholder is replaced by the input path in extractor commands.
const FilePlaceholder = "{file}"

// Source produces the text of a document.
type Source interface {
	Text(ctx context.Context) (string, error)
}

// PlainText reads UTF-8 text from a reader. Invalid byte sequences are dropped.
type PlainText struct {
	r io.Reader
}

// NewPlainText wraps r.
func NewPlainText(r io.Reader) *PlainText {
	return &PlainText{r: r}
}

// Text implements Source.
func (p *PlainText) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(p.r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrTextSource, err)
	}
	return textutil.Clean(string(data)), nil
}

// FileText reads a text file lazily.
type FileText struct {
	path string
}

// Text implements Source.
func (f *FileText) Text(ctx context.Context) (string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrTextSource, err)
	}
	defer func() { _ = file.Close() }()
	return NewPlainText(file).Text(ctx)
}

// CommandExtractor runs an external program that writes the text of a
// file to stdout, e.g. pdftotext.
type CommandExtractor struct {
	path    string
	command []string
	retry   service.RetryOptions
	timeout time.Duration
}

// NewCommandExtractor builds an extractor for path. Each element of command
// equal to FilePlaceholder is replaced with path; if none is, path is
// appended.
func NewCommandExtractor(path string, command []string, timeout time.Duration, retries int) (*CommandExtractor, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("%w: empty extractor command", common.ErrMissingConfig)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CommandExtractor{
		path:    path,
		command: command,
		timeout: timeout,
		retry: service.RetryOptions{
			MaxAttempts:  retries + 1,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		},
	}, nil
}

// Args returns the argv the extractor will execute.
func (c *CommandExtractor) Args() []string {
	args := make([]string, 0, len(c.command)+1)
	substituted := false
	for _, a := range c.command {
		if a == FilePlaceholder {
			args = append(args, c.path)
			substituted = true
			continue
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, c.path)
	}
	return args
}

// Text implements Source.
func (c *CommandExtractor) Text(ctx context.Context) (string, error) {
	if _, err := os.Stat(c.path); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrTextSource, err)
	}

	var out string
	err := common.WithRetry(ctx, func() error {
		text, runErr := c.run(ctx)
		if runErr != nil {
			return runErr
		}
		out = text
		return nil
	}, c.retry)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", common.ErrTextSource, c.command[0], err)
	}
	return out, nil
}

func (c *CommandExtractor) run(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := c.Args()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // command comes from local configuration
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", context.DeadlineExceeded
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", common.Permanent(fmt.Errorf("exit %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String())))
		}
		return "", common.Permanent(err)
	}
	return textutil.Clean(stdout.String()), nil
}

// Options configure ForFile.
type Options struct {
	PDFCommand []string
	Timeout    time.Duration
	Retries    int
}

// ForFile picks a Source by file extension.
func ForFile(path string, opts Options) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewCommandExtractor(path, opts.PDFCommand, opts.Timeout, opts.Retries)
	case ".txt", ".text", ".md", "":
		return &FileText{path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFile, filepath.Ext(path))
	}
}
