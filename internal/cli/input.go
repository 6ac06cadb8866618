package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Tlatoani315/estudiar-ipn/internal/scheduler"
)

// SplitNames splits comma separated arguments into trimmed, non-empty names.
func SplitNames(args []string) []string {
	var names []string
	for _, arg := range args {
		for _, name := range strings.Split(arg, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// ParseItemLines reads Subject/Topic/Subtopic lines. Extra slashes belong to the subtopic.
// Lines without a slash are ignored; lines with fewer than three parts are counted as malformed.
func ParseItemLines(r io.Reader) ([]scheduler.Item, int, error) {
	var items []scheduler.Item
	malformed := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "/") {
			continue
		}
		parts := strings.SplitN(line, "/", 3)
		if len(parts) < 3 {
			malformed++
			continue
		}
		items = append(items, scheduler.Item{
			Subject:  strings.TrimSpace(parts[0]),
			Topic:    strings.TrimSpace(parts[1]),
			Subtopic: strings.TrimSpace(parts[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scanner.Scan() > %w", err)
	}
	return items, malformed, nil
}

// ParseSuggestArgs reads a subject of one or more words followed by a count.
func ParseSuggestArgs(args []string) (string, int, error) {
	if len(args) < 2 {
		return "", 0, fmt.Errorf("usage: suggest <subject> <count>")
	}
	count, err := strconv.Atoi(args[len(args)-1])
	if err != nil || count < 0 {
		return "", 0, fmt.Errorf("count must be a non-negative number: %q", args[len(args)-1])
	}
	return strings.Join(args[:len(args)-1], " "), count, nil
}
