package correlate

import "nexo/internal/model"

// BestPerPerson reduces the generative correlation output to a single case
// per person: the pair with the smallest elapsed-day count, ties broken by
// the earliest disappearance record id. Kept outside the correlator:
// producing all plausible links and picking the best one are separate,
// swappable policies.
func BestPerPerson(pairs []model.CorrelatedPair) []model.CorrelatedPair {
	best := make(map[string]model.CorrelatedPair)
	order := make([]string, 0)

	for _, p := range pairs {
		current, ok := best[p.PersonKey]
		if !ok {
			best[p.PersonKey] = p
			order = append(order, p.PersonKey)
			continue
		}
		if p.ElapsedDays < current.ElapsedDays ||
			(p.ElapsedDays == current.ElapsedDays && p.Source.RecordID < current.Source.RecordID) {
			best[p.PersonKey] = p
		}
	}

	out := make([]model.CorrelatedPair, 0, len(best))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}
