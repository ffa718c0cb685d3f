package foldcache

import (
	"time"
)

// FoldStatus represents the lifecycle state of a cached fold.
type FoldStatus string

const (
	FoldStatusActive     FoldStatus = "active"
	FoldStatusCompressed FoldStatus = "compressed"
	FoldStatusEvicted    FoldStatus = "evicted"
	FoldStatusError      FoldStatus = "error"
)

// ValidTransitions defines allowed state transitions.
var ValidTransitions = map[FoldStatus][]FoldStatus{
	FoldStatusActive:     {FoldStatusCompressed, FoldStatusEvicted, FoldStatusError},
	FoldStatusCompressed: {FoldStatusActive, FoldStatusEvicted, FoldStatusError},
	FoldStatusError:      {FoldStatusActive, FoldStatusCompressed, FoldStatusEvicted},
	FoldStatusEvicted:    {}, // terminal
}

// CanTransitionTo checks if a transition from current status to target is valid.
func (s FoldStatus) CanTransitionTo(target FoldStatus) bool {
	allowed, ok := ValidTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if this is a terminal state.
func (s FoldStatus) IsTerminal() bool {
	return s == FoldStatusEvicted
}

// CompressionLevel selects the effort spent compressing a fold's payload.
type CompressionLevel string

const (
	CompressionNone   CompressionLevel = "none"
	CompressionLight  CompressionLevel = "light"
	CompressionMedium CompressionLevel = "medium"
	CompressionHeavy  CompressionLevel = "heavy"
)

// Valid reports whether the level is usable for a compress operation.
// CompressionNone only marks a fold that has never been compressed.
func (l CompressionLevel) Valid() bool {
	switch l {
	case CompressionLight, CompressionMedium, CompressionHeavy:
		return true
	}
	return false
}

// Item categories. The cache never branches on category; the constants exist
// so callers and tests share one vocabulary.
const (
	CategorySemantic   = "semantic"
	CategoryEpisodic   = "episodic"
	CategoryProcedural = "procedural"
	CategoryWorking    = "working"
)

// Item is a single stored unit inside a fold. The cache consumes it opaquely:
// fields are serialized for compression and summed for size accounting, never
// interpreted.
type Item struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	Category   string    `json:"category"`
	Importance float64   `json:"importance"`
	Tags       []string  `json:"tags,omitempty"`
	CausalIDs  []string  `json:"causal_ids,omitempty"`
}

// Fold is an ordered group of items managed as a single cache entry.
// While resident, the wrapping ManagedFold owns it exclusively; ownership
// transfers to the caller on Access.
type Fold struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// NewFold constructs a fold over items, caching its serialized size.
// An empty id is assigned by the engine at registration.
func NewFold(id string, items []Item) *Fold {
	f := &Fold{
		ID:        id,
		Items:     items,
		CreatedAt: time.Now(),
	}
	if raw, err := encodeItems(items); err == nil {
		f.SizeBytes = int64(len(raw))
	}
	return f
}

// FoldMetrics carries per-fold cache bookkeeping.
type FoldMetrics struct {
	CreatedAt        time.Time  `json:"created_at"`
	LastAccessed     *time.Time `json:"last_accessed,omitempty"`
	AccessCount      int64      `json:"access_count"`
	CompressionRatio float64    `json:"compression_ratio"`
	ItemCount        int        `json:"item_count"`
	SizeBytes        int64      `json:"size_bytes"`
}
