package logging

// #region imports
import (
	"database/sql"
	"math"
	"sort"
	"time"
)

// #endregion

// halfLife for decay weighting of attempts, in hours.
const halfLife = 7.0 * 24.0

// #region candidate-stats

// CandidateStats aggregates candidate_attempts per candidate. Each attempt
// is weighted by exp(-age/halfLife) relative to now.
func CandidateStats(db *sql.DB, now time.Time) ([]CandidateStat, error) {
	rows, err := db.Query(`SELECT candidate, outcome, latency_ms, created_at FROM candidate_attempts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type accum struct {
		stat        CandidateStat
		weightedHit float64
		totalWeight float64
		latencySum  float64
	}
	byCand := make(map[string]*accum)

	for rows.Next() {
		var cand, outcome, createdAtStr string
		var latency int64
		if err := rows.Scan(&cand, &outcome, &latency, &createdAtStr); err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
		if err != nil {
			continue
		}
		ageHours := math.Max(0, now.Sub(createdAt).Hours())
		weight := math.Exp(-ageHours / halfLife)

		a, ok := byCand[cand]
		if !ok {
			a = &accum{stat: CandidateStat{Candidate: cand}}
			byCand[cand] = a
		}
		a.stat.Attempts++
		a.latencySum += float64(latency)
		a.totalWeight += weight
		switch outcome {
		case "success":
			a.stat.Successes++
			a.weightedHit += weight
		case "retryable":
			a.stat.Retryable++
		case "fatal":
			a.stat.Fatal++
		case "empty":
			a.stat.Empty++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := make([]CandidateStat, 0, len(byCand))
	for _, a := range byCand {
		if a.totalWeight > 0 {
			a.stat.SuccessRate = a.weightedHit / a.totalWeight
		}
		a.stat.AvgLatencyMS = a.latencySum / float64(a.stat.Attempts)
		stats = append(stats, a.stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Candidate < stats[j].Candidate })
	return stats, nil
}

// #endregion
