package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level classifies a log line for display.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarn:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Entry is one parsed line of the application log.
type Entry struct {
	Time    time.Time
	HasTime bool
	Level   Level
	Message string
}

// stdlib log.LstdFlags prefix: "2006/01/02 15:04:05 ".
const stdTimeLayout = "2006/01/02 15:04:05"

// Parse splits a log line into its timestamp and message and guesses the
// level. Notification lines look like "[error] title: body"; hook and sweep
// failures contain "failed".
func Parse(line string) Entry {
	entry := Entry{Message: line}
	if len(line) > len(stdTimeLayout) {
		if ts, err := time.ParseInLocation(stdTimeLayout, line[:len(stdTimeLayout)], time.Local); err == nil {
			entry.Time = ts
			entry.HasTime = true
			entry.Message = strings.TrimSpace(line[len(stdTimeLayout):])
		}
	}
	entry.Level = classify(entry.Message)
	return entry
}

// ParseAll parses each line in order.
func ParseAll(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		out = append(out, Parse(line))
	}
	return out
}

func classify(msg string) Level {
	lower := strings.ToLower(msg)
	switch {
	case strings.HasPrefix(lower, "[error]"):
		return LevelError
	case strings.HasPrefix(lower, "[warning]"):
		return LevelWarn
	case strings.HasPrefix(lower, "[success]"):
		return LevelSuccess
	case strings.HasPrefix(lower, "[info]"):
		return LevelInfo
	case strings.Contains(lower, " failed"), strings.Contains(lower, "error"):
		return LevelError
	case strings.Contains(lower, "offline"), strings.Contains(lower, "retry"):
		return LevelWarn
	}
	return LevelInfo
}
