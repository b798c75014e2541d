package words

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Dictionary is the read-only set of accepted words. Immutable after
// construction, safe for concurrent reads without synchronization.
type Dictionary struct {
	words map[string]struct{}
}

// New builds a dictionary from an explicit word list, lowercasing entries
func New(entries ...string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(entries))}
	for _, w := range entries {
		d.words[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return d
}

// Load reads a newline-separated word file, keeping lowercase entries of at
// least minLen characters.
func Load(path string, minLen int) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()

	d := &Dictionary{words: make(map[string]struct{})}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if len(w) >= minLen {
			d.words[w] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	return d, nil
}

// Contains reports whether the word is in the dictionary
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.words[word]
	return ok
}

// Size returns the number of loaded words
func (d *Dictionary) Size() int {
	return len(d.words)
}
