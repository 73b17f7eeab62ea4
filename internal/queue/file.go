package queue

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileBackend keeps one record per line in a plain text file.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

// NewFileBackend prepares the parent directory of path.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("queue file path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}
	return &FileBackend{path: path}, nil
}

// Append writes the line and fsyncs before returning.
func (b *FileBackend) Append(_ context.Context, line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Lines returns the non-empty lines, including any batch a sync pass has
// taken but not yet committed. A missing file is an empty queue.
func (b *FileBackend) Lines(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	taken, err := readLines(b.syncingPath())
	if err != nil {
		return nil, err
	}
	lines, err := readLines(b.path)
	if err != nil {
		return nil, err
	}
	return append(taken, lines...), nil
}

// Take moves the queue file aside as path+".syncing" and returns its lines.
// Appends made after Take land in a fresh queue file, and commit removes
// only the moved batch. A batch left behind by an interrupted pass is
// merged with the current file so nothing is taken twice or skipped.
func (b *FileBackend) Take(_ context.Context) ([]string, func(context.Context) error, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	syncing := b.syncingPath()
	if err := b.moveAside(syncing); err != nil {
		return nil, nil, err
	}
	lines, err := readLines(syncing)
	if err != nil {
		return nil, nil, err
	}
	commit := func(context.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		if err := os.Remove(syncing); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return lines, commit, nil
}

func (b *FileBackend) syncingPath() string { return b.path + ".syncing" }

func (b *FileBackend) moveAside(syncing string) error {
	if _, err := os.Stat(syncing); errors.Is(err, fs.ErrNotExist) {
		if err := os.Rename(b.path, syncing); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("move queue aside: %w", err)
		}
		return nil
	} else if err != nil {
		return err
	}

	raw, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	f, err := os.OpenFile(syncing, os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(b.path)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
