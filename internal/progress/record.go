package progress

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/thanhdat24/code-learning/internal/judge"
)

// Submission is one evaluated attempt. Submissions are immutable once
// created and are only ever prepended to a record.
type Submission struct {
	ID        string        `json:"id"`
	ProblemID string        `json:"problemId"`
	Code      string        `json:"code"`
	Timestamp int64         `json:"timestamp"` // unix milliseconds
	Result    judge.Verdict `json:"result"`
}

// NewSubmission stamps a fresh submission with a random id.
func NewSubmission(problemID, code string, verdict judge.Verdict, now time.Time) Submission {
	return Submission{
		ID:        uuid.NewString(),
		ProblemID: problemID,
		Code:      code,
		Timestamp: now.UnixMilli(),
		Result:    verdict,
	}
}

// UnmarshalJSON accepts a fractional or exponent-form timestamp, which is
// how JavaScript writers store Date.now() in BSON doubles.
func (s *Submission) UnmarshalJSON(data []byte) error {
	type plain Submission
	aux := struct {
		*plain
		Timestamp json.Number `json:"timestamp"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ts, err := roundNumber(aux.Timestamp)
	if err != nil {
		return fmt.Errorf("submission timestamp: %w", err)
	}
	s.Timestamp = ts
	return nil
}

// Time returns the submission time.
func (s Submission) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Record is a user's progress: points, the solved set and the submission
// history, newest first.
type Record struct {
	Username         string       `json:"username"`
	SolvedProblemIDs []string     `json:"solvedProblemIds"`
	Points           int          `json:"points"`
	Submissions      []Submission `json:"submissions"`
}

// New returns the zero record for username.
func New(username string) Record {
	return Record{
		Username:         username,
		SolvedProblemIDs: []string{},
		Submissions:      []Submission{},
	}
}

// UnmarshalJSON rounds a fractional points value instead of rejecting it.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Points json.Number `json:"points"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p, err := roundNumber(aux.Points)
	if err != nil {
		return fmt.Errorf("record points: %w", err)
	}
	if p > math.MaxInt32 {
		p = math.MaxInt32
	}
	r.Points = int(p)
	return nil
}

// roundNumber reads a JSON number as the nearest integer. A missing or null
// value is zero.
func roundNumber(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, fmt.Errorf("%s out of range", n)
	}
	return int64(math.Round(f)), nil
}

// IsSolved reports whether problemID is in the solved set.
func (r Record) IsSolved(problemID string) bool {
	return slices.Contains(r.SolvedProblemIDs, problemID)
}

// SubmissionsFor returns the submissions for problemID, newest first.
func (r Record) SubmissionsFor(problemID string) []Submission {
	var out []Submission
	for _, s := range r.Submissions {
		if s.ProblemID == problemID {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b Submission) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		}
		return 0
	})
	return out
}

// Clone returns a deep copy. Verdict slices are copied too so callers may
// hand the clone across goroutines.
func (r Record) Clone() Record {
	c := Record{
		Username:         r.Username,
		Points:           r.Points,
		SolvedProblemIDs: slices.Clone(r.SolvedProblemIDs),
		Submissions:      make([]Submission, len(r.Submissions)),
	}
	if c.SolvedProblemIDs == nil {
		c.SolvedProblemIDs = []string{}
	}
	for i, s := range r.Submissions {
		s.Result.Suggestions = slices.Clone(s.Result.Suggestions)
		s.Result.TestResults = slices.Clone(s.Result.TestResults)
		c.Submissions[i] = s
	}
	return c
}

// Normalize replaces nil collections with empty ones so the record
// serializes with arrays rather than nulls, drops repeated solved ids
// (first occurrence wins) and clamps negative points.
func (r *Record) Normalize() {
	if r.SolvedProblemIDs == nil {
		r.SolvedProblemIDs = []string{}
	}
	seen := make(map[string]struct{}, len(r.SolvedProblemIDs))
	ids := r.SolvedProblemIDs[:0]
	for _, id := range r.SolvedProblemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	r.SolvedProblemIDs = ids
	if r.Submissions == nil {
		r.Submissions = []Submission{}
	}
	if r.Points < 0 {
		r.Points = 0
	}
}
