package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	scanInitial = 64 * 1024
	scanMax     = 1024 * 1024

	// DefaultPollInterval is how often Follow checks for appended lines.
	DefaultPollInterval = 250 * time.Millisecond
)

// Filter reports whether a line should be shown.
type Filter func(line string) bool

// ItemFilter matches lines tagged with the given item id. Console lines carry
// the id in their subject ("Item #12"); JSON lines carry an item_id field.
func ItemFilter(id int64) Filter {
	if id <= 0 {
		return nil
	}
	idText := strconv.FormatInt(id, 10)
	console := "Item #" + idText
	jsonField := `"item_id":` + idText
	return func(line string) bool {
		if idx := strings.Index(line, console); idx >= 0 {
			rest := line[idx+len(console):]
			return rest == "" || !isDigit(rest[0])
		}
		if idx := strings.Index(line, jsonField); idx >= 0 {
			rest := line[idx+len(jsonField):]
			return rest == "" || !isDigit(rest[0])
		}
		return false
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Last returns up to limit trailing lines accepted by filter, and the file size
// to pass to Follow. A missing file yields no lines and offset zero.
func Last(path string, limit int, filter Filter) ([]string, int64, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return nil, 0, err
	}
	defer file.Close()

	if limit <= 0 {
		size, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, size, nil
	}

	ring := make([]string, 0, limit)
	start := 0
	scanner := newScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if filter != nil && !filter(line) {
			continue
		}
		if len(ring) < limit {
			ring = append(ring, line)
			continue
		}
		ring[start] = line
		start = (start + 1) % limit
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}
	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	lines := make([]string, 0, len(ring))
	lines = append(lines, ring[start:]...)
	lines = append(lines, ring[:start]...)
	return lines, offset, nil
}

// Follow emits lines appended after offset until ctx ends. A file that shrinks
// below offset (truncated or rotated) is read again from the start. Follow
// returns nil when ctx is cancelled.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, filter Filter, emit func(string)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		lines, next, err := readFrom(path, offset)
		if err != nil {
			return err
		}
		offset = next
		for _, line := range lines {
			if filter == nil || filter(line) {
				emit(line)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// readFrom reads complete lines after offset. A trailing partial line is left
// for the next call so writers mid-record are never split.
func readFrom(path string, offset int64) ([]string, int64, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return nil, 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, scanInitial)
	var lines []string
	for {
		chunk, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return lines, offset, nil
		}
		if err != nil {
			return lines, offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(chunk))
		lines = append(lines, strings.TrimRight(chunk, "\r\n"))
	}
}

func openLog(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scanInitial), scanMax)
	return scanner
}
