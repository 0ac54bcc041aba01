// Package names loads the optional mapping from drawn numbers to participant
// names.
package names

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Map holds participant names keyed by number.
type Map map[int]string

// Load reads one "<number> <name>" entry per line from path. Blank lines and
// lines starting with '#' are skipped. A missing file yields an empty Map.
func Load(path string, universe int) (Map, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Map{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only names file.
			_ = cerr
		}
	}()
	m, err := Parse(file, universe)
	if err != nil {
		return nil, fmt.Errorf("failed to read names from %s: %w", path, err)
	}
	return m, nil
}

// Parse reads name entries from r. Numbers must lie within [1, universe].
func Parse(r io.Reader, universe int) (Map, error) {
	m := Map{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		numText, name, ok := strings.Cut(line, " ")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("line %d: expected \"<number> <name>\"", lineNo)
		}
		n, err := strconv.Atoi(numText)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid number %q", lineNo, numText)
		}
		if n < 1 || n > universe {
			return nil, fmt.Errorf("line %d: number %d outside 1-%d", lineNo, n, universe)
		}
		if prev, dup := m[n]; dup {
			return nil, fmt.Errorf("line %d: number %d already assigned to %s", lineNo, n, prev)
		}
		m[n] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Name returns the participant name for n, if any.
func (m Map) Name(n int) (string, bool) {
	name, ok := m[n]
	return name, ok
}

// Format renders n followed by its participant name when one is known.
func (m Map) Format(n int) string {
	if name, ok := m[n]; ok {
		return strconv.Itoa(n) + " " + name
	}
	return strconv.Itoa(n)
}
