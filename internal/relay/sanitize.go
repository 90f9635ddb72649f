package relay

import (
	"encoding/json"
	"math"

	"github.com/thanhdat24/code-learning/internal/progress"
)

// Sanitize builds the record to store from an untrusted request body.
// Non-string solved ids are dropped, a non-finite or missing points value
// becomes 0, and submissions that do not decode are skipped.
func Sanitize(username string, body map[string]any) progress.Record {
	rec := progress.New(username)

	if ids, ok := body["solvedProblemIds"].([]any); ok {
		for _, v := range ids {
			if id, ok := v.(string); ok {
				rec.SolvedProblemIDs = append(rec.SolvedProblemIDs, id)
			}
		}
	}

	if p, ok := body["points"].(float64); ok && !math.IsInf(p, 0) && !math.IsNaN(p) {
		if p > math.MaxInt32 {
			p = math.MaxInt32
		}
		rec.Points = int(math.Round(p))
	}

	if subs, ok := body["submissions"].([]any); ok {
		for _, v := range subs {
			if s, ok := decodeSubmission(v); ok {
				rec.Submissions = append(rec.Submissions, s)
			}
		}
	}

	rec.Normalize()
	return rec
}

func decodeSubmission(v any) (progress.Submission, bool) {
	if _, ok := v.(map[string]any); !ok {
		return progress.Submission{}, false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return progress.Submission{}, false
	}
	var s progress.Submission
	if err := json.Unmarshal(data, &s); err != nil {
		return progress.Submission{}, false
	}
	return s, true
}
