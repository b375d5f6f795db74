// Package mover files classified documents under an output tree.
package mover

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dgallion1/docsort/internal/rules"
)

// Mode selects what happens to the source file.
type Mode int

const (
	Move Mode = iota
	Copy
)

func (m Mode) String() string {
	if m == Copy {
		return "copy"
	}
	return "move"
}

// maxSuffix bounds the search for a free name in the destination directory.
const maxSuffix = 1000

// ErrNoFreeName is returned when every candidate target name is taken.
var ErrNoFreeName = errors.New("no free file name in destination")

// Action describes one filing operation, performed or planned.
type Action struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Mode   string `json:"mode"`
	DryRun bool   `json:"dry_run,omitempty"`
}

// Mover places files under root following a rule's destination. Existing
// files are never overwritten; a numeric suffix is added instead.
type Mover struct {
	root   string
	mode   Mode
	dryRun bool
	log    *slog.Logger
}

func New(root string, mode Mode, dryRun bool, log *slog.Logger) *Mover {
	return &Mover{root: root, mode: mode, dryRun: dryRun, log: log}
}

// Dir returns the directory a document matched by rule goes into.
func (m *Mover) Dir(rule rules.Rule) string {
	return filepath.Join(m.root, rule.Path())
}

// File moves or copies source into the directory for rule.
func (m *Mover) File(rule rules.Rule, source string) (Action, error) {
	act := Action{Source: source, Mode: m.mode.String(), DryRun: m.dryRun}

	info, err := os.Stat(source)
	if err != nil {
		return act, fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return act, fmt.Errorf("%s is not a regular file", source)
	}

	dir := m.Dir(rule)
	target, err := freeName(dir, filepath.Base(source))
	if err != nil {
		return act, err
	}
	act.Target = target

	log := m.log.With("source", source, "target", target, "mode", act.Mode)
	if m.dryRun {
		log.Info("dry run: would file document")
		return act, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return act, fmt.Errorf("create destination %s: %w", dir, err)
	}

	switch m.mode {
	case Copy:
		err = copyFile(source, target, info.Mode().Perm())
	default:
		err = moveFile(source, target, info.Mode().Perm())
	}
	if err != nil {
		return act, fmt.Errorf("%s %s to %s: %w", act.Mode, source, target, err)
	}

	log.Info("document filed")
	return act, nil
}

// freeName returns dir/name, or dir/stem-N.ext for the first N that is not
// already taken.
func freeName(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
		return candidate, nil
	} else if err != nil {
		return "", fmt.Errorf("check target: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i <= maxSuffix; i++ {
		candidate = filepath.Join(dir, stem+"-"+strconv.Itoa(i)+ext)
		_, err := os.Lstat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check target: %w", err)
		}
	}
	return "", fmt.Errorf("%s in %s: %w", name, dir, ErrNoFreeName)
}

// moveFile renames src to dst, falling back to copy and remove when they
// live on different filesystems.
func moveFile(src, dst string, perm fs.FileMode) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst, perm); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile copies src into a new file dst. It fails if dst exists.
func copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
