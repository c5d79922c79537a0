package export

import (
	"time"

	"github.com/axonius-community/go-axonius/fields"
)

// Row is one asset record: fully-qualified field name to value. Values are
// scalars, lists of scalars, or lists of sub-rows for complex fields.
type Row map[string]any

// RowAck is the minimal per-row acknowledgment returned by ProcessRows. The
// full transformed row is only written to the sink, never returned, to avoid
// doubling memory for large exports.
type RowAck struct {
	InternalAxonID string `json:"internal_axon_id"`
}

// CustomCBError records one failed custom callback invocation. The rows it
// was handed continue through the pipeline untransformed.
type CustomCBError struct {
	Rows []Row
	Err  error
}

// phase is the pipeline lifecycle state.
type phase int

const (
	phaseUnstarted phase = iota
	phaseStarted
	phaseStopped
)

// state holds the mutable counters and accumulators of one run. Created at
// Start, mutated by every ProcessRows call, finalized at Stop.
type state struct {
	phase phase

	rowsProcessed int
	rowsToFetch   int
	firstRow      bool

	fetchDate time.Time

	// custom holds descriptors synthesized by stages (report fields) so they
	// appear in schema export and title renaming.
	custom []*fields.Field

	tagAdd    idSet
	tagRemove idSet

	tagsAdded   int
	tagsRemoved int

	cbErrors []CustomCBError

	stopReason string
}

// idSet accumulates internal_axon_ids, preserving insertion order and
// dropping duplicates.
type idSet struct {
	seen map[string]bool
	ids  []string
}

func (s *idSet) add(id string) {
	if id == "" || s.seen[id] {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	s.seen[id] = true
	s.ids = append(s.ids, id)
}

func (s *idSet) clear() {
	s.seen = nil
	s.ids = nil
}

func (s *idSet) len() int {
	return len(s.ids)
}

func (s *idSet) values() []string {
	return s.ids
}

// StateView is a read-only snapshot of pipeline state handed to callers for
// reporting after Stop.
type StateView struct {
	RowsProcessed  int
	RowsToFetch    int
	TagsAdded      int
	TagsRemoved    int
	TagsPendingAdd int
	TagsPendingRm  int
	CustomCBErrors []CustomCBError
	OutputPath     string
	StopReason     string
}
