package airquality

import (
	"github.com/airwatch/airwatch/internal/geo"
)

// DefaultSummaryLimit is the number of nearest measurements averaged per query.
const DefaultSummaryLimit = 5

// Candidates converts measurements into distance-resolver candidates.
func Candidates(measurements []Measurement) []geo.Candidate[Measurement] {
	out := make([]geo.Candidate[Measurement], 0, len(measurements))
	for _, m := range measurements {
		out = append(out, geo.Candidate[Measurement]{
			ID:         m.ID,
			Item:       m,
			Location:   m.Location,
			ObservedAt: m.Timestamp,
		})
	}
	return out
}

// Rejected is a measurement excluded from aggregation and the reason why.
type Rejected struct {
	Measurement Measurement
	Err         error
}

// Partition splits ranked measurements into those with a classifiable AQI
// and those without. Order is preserved on both sides.
func Partition(ranked []geo.Ranked[Measurement]) (valid []geo.Ranked[Measurement], rejected []Rejected) {
	valid = make([]geo.Ranked[Measurement], 0, len(ranked))
	for _, r := range ranked {
		if err := validate(r.Item); err != nil {
			rejected = append(rejected, Rejected{Measurement: r.Item, Err: err})
			continue
		}
		valid = append(valid, r)
	}
	return valid, rejected
}

func validate(m Measurement) error {
	if m.AQI == nil {
		return ErrInvalidMeasurement
	}
	_, err := Classify(*m.AQI)
	return err
}

// Summarize averages the AQI of the first limit ranked measurements and
// reports the first one as the closest reading. Unclassifiable entries are
// skipped. A limit of zero or less uses DefaultSummaryLimit.
func Summarize(ranked []geo.Ranked[Measurement], limit int) (*Summary, error) {
	valid, _ := Partition(ranked)
	if len(valid) == 0 {
		return nil, ErrNotFound
	}
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}
	if len(valid) > limit {
		valid = valid[:limit]
	}

	var sum float64
	for _, r := range valid {
		sum += *r.Item.AQI
	}

	closest := valid[0]
	aqi := *closest.Item.AQI
	level, _ := Classify(aqi)

	return &Summary{
		Mode:       ModeNearest,
		AverageAQI: geo.Round2(sum / float64(len(valid))),
		Count:      len(valid),
		Closest: Reading{
			Measurement: closest.Item,
			AQI:         aqi,
			Level:       level,
			DistanceKm:  geo.Round2(closest.DistanceKm),
		},
	}, nil
}

// SummarizeRecent summarizes measurements that are already ordered newest
// first, without a query location. Distance is reported as zero.
func SummarizeRecent(measurements []Measurement, limit int) (*Summary, error) {
	ranked := make([]geo.Ranked[Measurement], 0, len(measurements))
	for _, m := range measurements {
		ranked = append(ranked, geo.Ranked[Measurement]{
			ID:         m.ID,
			Item:       m,
			Location:   m.Location,
			ObservedAt: m.Timestamp,
		})
	}

	summary, err := Summarize(ranked, limit)
	if err != nil {
		return nil, err
	}
	summary.Mode = ModeRecent
	return summary, nil
}
