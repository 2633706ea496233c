package npk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Decompiler turns a recovered bytecode file into source text.
type Decompiler interface {
	// Decompile reads src and writes the source text to dst.
	Decompile(ctx context.Context, src, dst string) error
}

// DecompilerFunc adapts a function to Decompiler.
type DecompilerFunc func(ctx context.Context, src, dst string) error

// Decompile calls f.
func (f DecompilerFunc) Decompile(ctx context.Context, src, dst string) error {
	return f(ctx, src, dst)
}

// Argument placeholders expanded by CommandDecompiler.
const (
	PlaceholderSrc = "{src}"
	PlaceholderDst = "{dst}"
)

// CommandDecompiler runs an external program once per file.
//
// Every argument has PlaceholderSrc and PlaceholderDst replaced by the input
// and output paths. With no arguments the program is run as "Path -o dst src".
type CommandDecompiler struct {
	Path string
	Args []string
}

// Decompile runs the command. A non-zero exit is returned as an error
// carrying the command's stderr.
func (d CommandDecompiler) Decompile(ctx context.Context, src, dst string) error {
	if d.Path == "" {
		return errors.New("npk: decompiler command not set")
	}
	args := d.Args
	if len(args) == 0 {
		args = []string{"-o", PlaceholderDst, PlaceholderSrc}
	}
	expanded := make([]string, len(args))
	r := strings.NewReplacer(PlaceholderSrc, src, PlaceholderDst, dst)
	for i, arg := range args {
		expanded[i] = r.Replace(arg)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.Path, expanded...) //nolint:gosec // command is operator configured
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("npk: decompile %s: %w", src, err)
		}
		return fmt.Errorf("npk: decompile %s: %w: %s", src, err, msg)
	}
	return nil
}
