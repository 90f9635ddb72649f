package progress

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Apply folds a submission into the record and returns the new record.
// Points and the solved set change only on the first Accepted submission for
// a problem; the submission itself is always prepended. Apply does not
// modify r.
func Apply(r Record, s Submission) Record {
	next := r.Clone()

	if s.Result.Accepted() && !next.IsSolved(s.ProblemID) {
		next.SolvedProblemIDs = append(next.SolvedProblemIDs, s.ProblemID)
		next.Points += max(s.Result.Score, 0)
	}

	next.Submissions = slices.Insert(next.Submissions, 0, s)
	return next
}

// Replay rebuilds a record from submissions given oldest first.
func Replay(username string, submissions []Submission) Record {
	r := New(username)
	for _, s := range submissions {
		r = Apply(r, s)
	}
	return r
}

// SolvedSet returns the solved problem ids as a set.
func (r Record) SolvedSet() mapset.Set[string] {
	return mapset.NewThreadUnsafeSet(r.SolvedProblemIDs...)
}

// ExpectedPoints recomputes points from the history: the score of the first
// Accepted submission per problem, summed.
func (r Record) ExpectedPoints() int {
	seen := mapset.NewThreadUnsafeSet[string]()
	total := 0
	for i := len(r.Submissions) - 1; i >= 0; i-- {
		s := r.Submissions[i]
		if s.Result.Accepted() && seen.Add(s.ProblemID) {
			total += max(s.Result.Score, 0)
		}
	}
	return total
}
