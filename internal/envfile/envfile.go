// Package envfile parses line-oriented KEY=VALUE files and classifies each
// entry by its key-naming convention. Classification is pure string
// inspection with no I/O, so the dispatch rules are testable on their own.
package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Key-naming convention: the wire contract between the env file author and
// the synchronizer.
const (
	secretPrefix   = "SECRET_"
	variablePrefix = "VAR_"
	filepathSuffix = "_FILEPATH"
)

// Kind classifies an entry by its key name.
type Kind int

const (
	// KindIgnored covers every key outside the naming convention.
	// Ignored entries trigger no store calls.
	KindIgnored Kind = iota
	// KindInlineSecret is SECRET_<NAME>: the value is the secret body.
	KindInlineSecret
	// KindFileSecret is SECRET_<NAME>_FILEPATH: the value is a local path
	// whose contents become the secret body.
	KindFileSecret
	// KindVariable is VAR_<NAME>: a non-secret configuration value.
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindInlineSecret:
		return "inline-secret"
	case KindFileSecret:
		return "file-secret"
	case KindVariable:
		return "variable"
	default:
		return "ignored"
	}
}

// Entry is one syntactically valid KEY=VALUE line. Entries carry no
// identity beyond the key; reprocessing the same key overwrites the
// remote value.
type Entry struct {
	Key   string
	Value string
}

// Kind classifies the entry's key.
func (e Entry) Kind() Kind {
	return Classify(e.Key)
}

// TargetName derives the remote secret/variable name from the key by
// stripping the convention's prefix and, for file secrets, the
// _FILEPATH suffix. Returns "" for ignored keys.
func (e Entry) TargetName() string {
	switch Classify(e.Key) {
	case KindFileSecret:
		return strings.TrimSuffix(strings.TrimPrefix(e.Key, secretPrefix), filepathSuffix)
	case KindInlineSecret:
		return strings.TrimPrefix(e.Key, secretPrefix)
	case KindVariable:
		return strings.TrimPrefix(e.Key, variablePrefix)
	default:
		return ""
	}
}

// Classify maps a key to its Kind. The file-secret check runs before the
// inline-secret check: both share the SECRET_ prefix, so the suffix must
// take precedence. A bare "SECRET__FILEPATH" style key still needs a
// non-empty name after stripping to count as a file secret.
func Classify(key string) Kind {
	switch {
	case strings.HasPrefix(key, secretPrefix) && strings.HasSuffix(key, filepathSuffix) &&
		len(key) > len(secretPrefix)+len(filepathSuffix):
		return KindFileSecret
	case strings.HasPrefix(key, secretPrefix) && len(key) > len(secretPrefix):
		return KindInlineSecret
	case strings.HasPrefix(key, variablePrefix) && len(key) > len(variablePrefix):
		return KindVariable
	default:
		return KindIgnored
	}
}

// Parse reads entries from r. Blank lines and lines starting with '#' are
// skipped, as are lines with no '='. Values are split on the first '='
// only, so a value may itself contain '='. A trailing carriage return is
// stripped to tolerate files authored with CRLF endings.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found || key == "" {
			continue
		}

		entries = append(entries, Entry{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	return entries, nil
}

// ParseFile reads entries from path. The file is the sole source of
// truth; there is no cached state, so a re-run rereads it.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open env file %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}
