// Package fingerprint computes TLSH locality-sensitive digests of article
// text so syndicated or lightly edited copies can be grouped together.
package fingerprint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glaslos/tlsh"
)

// MinLength is the shortest input TLSH will hash.
const MinLength = 50

// ErrTooShort is returned for inputs below MinLength bytes.
var ErrTooShort = errors.New("text too short to fingerprint")

// Compute returns a "T1"-prefixed uppercase TLSH digest of text.
func Compute(text string) (string, error) {
	normalized := normalize(text)
	if len(normalized) < MinLength {
		return "", ErrTooShort
	}

	h, err := tlsh.HashBytes([]byte(normalized))
	if err != nil {
		return "", fmt.Errorf("tlsh hash: %w", err)
	}

	return "T1" + strings.ToUpper(h.String()), nil
}

// Distance returns the TLSH distance between two digests. 0 means identical.
func Distance(d1, d2 string) (int, error) {
	t1, err := parse(d1)
	if err != nil {
		return 0, err
	}
	t2, err := parse(d2)
	if err != nil {
		return 0, err
	}
	return t1.Diff(t2), nil
}

func parse(digest string) (*tlsh.TLSH, error) {
	// ParseStringToTlsh expects the raw hex without the version prefix
	t, err := tlsh.ParseStringToTlsh(strings.TrimPrefix(digest, "T1"))
	if err != nil {
		return nil, fmt.Errorf("parse digest %q: %w", digest, err)
	}
	return t, nil
}

// normalize lowercases and collapses whitespace so markup-only differences
// do not move the digest.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Item is a digest tagged with the id of what produced it.
type Item struct {
	ID     string
	Digest string
}

// Group clusters items whose digests lie within threshold of any member of
// the cluster. Items with empty or invalid digests are skipped. Only groups
// with two or more members are returned, in input order.
func Group(items []Item, threshold int) [][]string {
	parsed := make([]*tlsh.TLSH, len(items))
	for i, it := range items {
		if it.Digest == "" {
			continue
		}
		if t, err := parse(it.Digest); err == nil {
			parsed[i] = t
		}
	}

	// union-find over item indexes
	parent := make([]int, len(items))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := range items {
		if parsed[i] == nil {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			if parsed[j] == nil {
				continue
			}
			if parsed[i].Diff(parsed[j]) <= threshold {
				ri, rj := find(i), find(j)
				if ri != rj {
					if rj < ri {
						ri, rj = rj, ri
					}
					parent[rj] = ri
				}
			}
		}
	}

	byRoot := make(map[int][]string)
	var roots []int
	for i, it := range items {
		if parsed[i] == nil {
			continue
		}
		r := find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], it.ID)
	}

	var groups [][]string
	for _, r := range roots {
		if len(byRoot[r]) > 1 {
			groups = append(groups, byRoot[r])
		}
	}
	return groups
}
