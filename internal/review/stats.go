package review

import "time"

// Stats is review progress derived from the snapshot. Never stored;
// recomputed on read. Deleted entries count toward Total but are
// excluded from the percentage denominator.
type Stats struct {
	HasSnapshot     bool      `json:"has_snapshot"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	Total           int       `json:"total"`
	Reviewed        int       `json:"reviewed"`
	ToReview        int       `json:"to_review"`
	Deleted         int       `json:"deleted"`
	PercentReviewed float64   `json:"percent_reviewed"`
}

func statsOf(snap *Snapshot) Stats {
	if snap == nil {
		return Stats{}
	}
	st := Stats{
		HasSnapshot: true,
		CreatedAt:   snap.CreatedAt,
		Total:       len(snap.Files),
	}
	for _, f := range snap.Files {
		switch f.Status {
		case StatusReviewed:
			st.Reviewed++
		case StatusToReview:
			st.ToReview++
		case StatusDeleted:
			st.Deleted++
		}
	}
	if live := st.Reviewed + st.ToReview; live > 0 {
		st.PercentReviewed = 100 * float64(st.Reviewed) / float64(live)
	}
	return st
}
