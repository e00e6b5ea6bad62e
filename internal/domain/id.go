package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ArticleKey is the two-level numeric key embedded in listing identifiers:
// a 4-digit year/month prefix split into two integers plus a sequence number
// after the dot, e.g. "arXiv:2501.12345" -> (25, 1, 12345).
type ArticleKey struct {
	Major int
	Minor int
	Seq   int
}

// ParseArticleID extracts the ArticleKey from a raw or storage-normalized
// identifier. An identifier that does not match the expected shape is an
// error, not a silently skipped value.
func ParseArticleID(id string) (ArticleKey, error) {
	raw := id
	if len(raw) >= 6 && strings.HasPrefix(strings.ToLower(raw), "ar") {
		raw = raw[6:]
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 2 {
		return ArticleKey{}, fmt.Errorf("article id %q: expected <prefix>.<sequence>", id)
	}
	if len(parts[0]) != 4 {
		return ArticleKey{}, fmt.Errorf("article id %q: prefix %q is not 4 digits", id, parts[0])
	}

	major, err := strconv.Atoi(parts[0][:2])
	if err != nil {
		return ArticleKey{}, fmt.Errorf("article id %q: major part: %w", id, err)
	}
	minor, err := strconv.Atoi(parts[0][2:])
	if err != nil {
		return ArticleKey{}, fmt.Errorf("article id %q: minor part: %w", id, err)
	}
	seq, err := strconv.Atoi(parts[1])
	if err != nil {
		return ArticleKey{}, fmt.Errorf("article id %q: sequence part: %w", id, err)
	}

	return ArticleKey{Major: major, Minor: minor, Seq: seq}, nil
}

// Compare orders keys lexicographically by (major, minor, sequence).
// It returns -1, 0 or 1.
func (k ArticleKey) Compare(other ArticleKey) int {
	if k.Major != other.Major {
		return sign(k.Major - other.Major)
	}
	if k.Minor != other.Minor {
		return sign(k.Minor - other.Minor)
	}
	return sign(k.Seq - other.Seq)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// SafeID normalizes an identifier for use as a cache key. Path-unsafe
// separator characters are replaced so the id can name a file slot.
func SafeID(id string) string {
	replacer := strings.NewReplacer(":", "_", "/", "_")
	return replacer.Replace(id)
}
