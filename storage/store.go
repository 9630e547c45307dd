// Package storage holds the committee event document store.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"

	"hearingwatch/types"
)

var (
	// ErrNotFound is returned when no event exists for the requested eventId.
	ErrNotFound = errors.New("committee event not found")

	// ErrDuplicateURL is returned when an upsert would give a second event the
	// committeeEventUrl already owned by another event.
	ErrDuplicateURL = errors.New("committee event url already in use")
)

// UpsertResult describes what an ingestion upsert changed.
type UpsertResult struct {
	Created bool
	// PreviousURL is set when an existing event's committeeEventUrl was replaced.
	PreviousURL string
}

// Store is the keyed document collection of CommitteeEvents. Implementations
// must be safe for concurrent use.
type Store interface {
	// UpsertEvent creates or refreshes the feed-derived fields of the event
	// keyed by m.EventID. Video fields are left untouched.
	UpsertEvent(ctx context.Context, m types.EventMetadata) (UpsertResult, error)

	GetEvent(ctx context.Context, eventID int64) (*types.CommitteeEvent, error)

	// ListAll returns every event ordered by committeeId ascending, then
	// meetingDate descending.
	ListAll(ctx context.Context) ([]*types.CommitteeEvent, error)

	// ListByCommittee returns one committee's events in ListAll order.
	ListByCommittee(ctx context.Context, committeeID string) ([]*types.CommitteeEvent, error)

	// SetVideoMatch writes the confirmed-match fields of an existing event.
	SetVideoMatch(ctx context.Context, eventID int64, m types.VideoMatch) error

	// SetVideoMatchByTitle writes the confirmed-match fields of the committee
	// event whose stored title equals title exactly. matched is false when no
	// such event exists.
	SetVideoMatchByTitle(ctx context.Context, committeeID, title string, m types.VideoMatch) (matched bool, err error)

	// SetPresumedMatch records a presumed video only if the event has neither a
	// confirmed nor a presumed video. saved is false when it was left alone.
	SetPresumedMatch(ctx context.Context, eventID int64, p types.PresumedMatch) (saved bool, err error)

	Close() error
}

// SortEvents orders events by committeeId ascending, meetingDate descending
// (events without a meeting date last), then eventId descending.
func SortEvents(events []*types.CommitteeEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.CommitteeID != b.CommitteeID {
			return a.CommitteeID < b.CommitteeID
		}
		switch {
		case a.MeetingDate == nil && b.MeetingDate != nil:
			return false
		case a.MeetingDate != nil && b.MeetingDate == nil:
			return true
		case a.MeetingDate != nil && b.MeetingDate != nil && !a.MeetingDate.Equal(*b.MeetingDate):
			return a.MeetingDate.After(*b.MeetingDate)
		}
		return a.EventID > b.EventID
	})
}

// firstByTitle returns the lowest-eventId event whose title equals title.
func firstByTitle(events []*types.CommitteeEvent, title string) *types.CommitteeEvent {
	var found *types.CommitteeEvent
	for _, e := range events {
		if e.Title != title {
			continue
		}
		if found == nil || e.EventID < found.EventID {
			found = e
		}
	}
	return found
}

// hashURL creates a short, stable key fragment for a URL
func hashURL(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
