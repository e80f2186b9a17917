// Package bloom provides URL deduplication using Bloom filters.
package bloom

import (
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// SeenSet tracks URLs already discovered during a scan. It is safe for
// concurrent use. False positives are possible (a never-seen URL may be
// reported seen); false negatives are not, so no URL is processed twice.
type SeenSet struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewSeenSet creates a SeenSet sized for n expected URLs with the given
// false positive rate.
func NewSeenSet(n uint, fpRate float64) *SeenSet {
	return &SeenSet{f: bloom.NewWithEstimates(n, fpRate)}
}

// MarkSeen records the URL and reports whether it was new. URL fragments
// are stripped first, so URLs differing only by fragment are duplicates.
func (s *SeenSet) MarkSeen(url string) bool {
	url = stripFragment(url)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f.TestString(url) {
		return false
	}
	s.f.AddString(url)
	return true
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
