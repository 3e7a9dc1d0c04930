package domain

import (
	"fmt"
	"time"
)

type Candidate string

const (
	CandidateHarris Candidate = "Harris"
	CandidateTrump  Candidate = "Trump"
)

var DefaultCandidates = []Candidate{CandidateHarris, CandidateTrump}

// VotesCollection is the document store collection holding one VoteRecord
// per voter, keyed by the voter's identity ID.
const VotesCollection = "votes"

type VoteRecord struct {
	VoterID    string    `json:"user_id"`
	Candidate  Candidate `json:"candidate"`
	VoterEmail string    `json:"user_email"`
	CastAt     time.Time `json:"timestamp"`
}

// VoteStatus is the per-session view of whether the current identity has
// voted. Unknown is set when the store could not be read; callers must
// disable voting in that state.
type VoteStatus struct {
	Checking  bool       `json:"checking"`
	HasVoted  bool       `json:"has_voted"`
	Candidate *Candidate `json:"candidate,omitempty"`
	Unknown   bool       `json:"unknown,omitempty"`
}

func VotedFor(c Candidate) VoteStatus {
	return VoteStatus{HasVoted: true, Candidate: &c}
}

type CandidateResult struct {
	Candidate     Candidate `json:"candidate"`
	VoteCount     int64     `json:"vote_count"`
	Percentage    float64   `json:"percentage"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// Document is the field map exchanged with the document store.
type Document map[string]any

func (r VoteRecord) Document() Document {
	return Document{
		"candidate":  string(r.Candidate),
		"user_id":    r.VoterID,
		"user_email": r.VoterEmail,
		"timestamp":  r.CastAt.UTC().Format(time.RFC3339Nano),
	}
}

// VoteRecordFromDocument reads a stored vote back. Only the candidate is
// required; the remaining fields are informational.
func VoteRecordFromDocument(doc Document) (VoteRecord, error) {
	candidate, ok := doc["candidate"].(string)
	if !ok || candidate == "" {
		return VoteRecord{}, fmt.Errorf("vote document has no candidate")
	}
	rec := VoteRecord{Candidate: Candidate(candidate)}
	rec.VoterID, _ = doc["user_id"].(string)
	rec.VoterEmail, _ = doc["user_email"].(string)
	if ts, ok := doc["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.CastAt = t
		}
	}
	return rec, nil
}
