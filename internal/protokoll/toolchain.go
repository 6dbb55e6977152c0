package protokoll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command is one external process invocation of a build.
type Command struct {
	Dir   string
	Name  string
	Args  []string
	Stdin []byte
}

// Runner executes a command and returns its captured output streams.
type Runner func(ctx context.Context, cmd Command) (stdout, stderr []byte, err error)

// ExecRunner runs commands as blocking subprocesses.
func ExecRunner(ctx context.Context, c Command) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// txt2tags targets in build order; tex must come last as pdflatex reads it.
var txt2tagsTargets = []string{"html", "txt", "tex"}

const pdflatexPasses = 2

// Driver compiles a txt2tags script into HTML, TXT and PDF.
type Driver struct {
	Run      Runner
	Txt2tags string
	Pdflatex string
}

// NewDriver returns a Driver executing the given binaries.
func NewDriver(txt2tags, pdflatex string) *Driver {
	return &Driver{Run: ExecRunner, Txt2tags: txt2tags, Pdflatex: pdflatex}
}

// Build compiles script into <stem>.html, .txt, .tex and .pdf. The tools run
// in a private directory next to stem; the previous artifacts are replaced
// only after every stage succeeded.
func (d *Driver) Build(ctx context.Context, script string, stem string) error {
	dir := filepath.Dir(stem)
	name := filepath.Base(stem)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	buildDir, err := os.MkdirTemp(dir, ".build-"+name+"-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(buildDir)

	buildStem := filepath.Join(buildDir, name)
	for _, target := range txt2tagsTargets {
		err := d.stage(ctx, "txt2tags "+target, Command{
			Dir:   buildDir,
			Name:  d.Txt2tags,
			Args:  []string{"-t", target, "-i", "-", "-o", buildStem + "." + target},
			Stdin: []byte(script),
		})
		if err != nil {
			return err
		}
	}

	for i := 0; i < pdflatexPasses; i++ {
		err := d.stage(ctx, "pdflatex", Command{
			Dir:  buildDir,
			Name: d.Pdflatex,
			Args: []string{"-interaction", "nonstopmode", "-output-directory", buildDir, buildStem + ".tex"},
		})
		if err != nil {
			return err
		}
	}

	for _, ext := range TransientExtensions {
		_ = os.Remove(buildStem + "." + ext)
	}

	outputs := append(append([]string{}, txt2tagsTargets...), "pdf")
	for _, ext := range outputs {
		if err := os.Rename(buildStem+"."+ext, stem+"."+ext); err != nil {
			return fmt.Errorf("installing %s artifact: %w", ext, err)
		}
	}
	return nil
}

func (d *Driver) stage(ctx context.Context, stage string, cmd Command) error {
	stdout, stderr, err := d.Run(ctx, cmd)
	if len(bytes.TrimSpace(stderr)) > 0 {
		return &ToolchainError{Stage: stage, Output: string(stderr), Err: err}
	}
	if err != nil {
		return &ToolchainError{Stage: stage, Output: string(stdout), Err: err}
	}
	return nil
}

// diagnosticMarkers prefix output lines of diagnostics that are caused by
// the markup and can be shown to the author. pdflatex reports errors on
// stdout and ends with its transcript notice, so the marker line is
// searched from the end of the output.
var diagnosticMarkers = []string{"txt2tags: Error:", "! "}

// ClassifyDiagnostic returns the last output line of a toolchain error that
// starts with a diagnostic marker.
func ClassifyDiagnostic(err error) (string, bool) {
	var tcErr *ToolchainError
	if !errors.As(err, &tcErr) {
		return "", false
	}
	lines := strings.Split(tcErr.Output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		for _, marker := range diagnosticMarkers {
			if strings.HasPrefix(line, marker) {
				return line, true
			}
		}
	}
	return "", false
}
