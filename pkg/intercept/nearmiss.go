package intercept

import (
	"context"
	"net/http"
	"sort"

	"github.com/getmockd/httpintercept/internal/matching"
)

// nearMissThreshold is the minimum share of matching criteria, in percent,
// for a registration to be reported as a near miss.
const nearMissThreshold = 50

// NearMiss is a registration that partially matched a request.
type NearMiss struct {
	RegistrationID string
	Method         string
	URL            string
	// MatchPercentage is how close the match was (0-100).
	MatchPercentage int
	// Reason explains why it did not fully match.
	Reason string
}

// NearMisses returns up to n structural registrations that match at least
// half of their criteria against r, closest first. Registrations with a
// custom matcher are never reported.
func (o *Options) NearMisses(ctx context.Context, r *http.Request, n int) []NearMiss {
	if r == nil || r.URL == nil {
		return nil
	}
	if n <= 0 {
		n = 3
	}

	compare := o.comparer()
	var misses []NearMiss
	for _, e := range o.candidates() {
		reg := e.reg
		if reg.custom != nil {
			continue
		}
		nm := matching.Breakdown(ctx, reg.criteria(), compare, r)
		if nm.MatchPercentage < nearMissThreshold || nm.MatchPercentage == 100 {
			continue
		}
		misses = append(misses, NearMiss{
			RegistrationID:  reg.ID(),
			Method:          reg.Method(),
			URL:             reg.URL(),
			MatchPercentage: nm.MatchPercentage,
			Reason:          nm.Reason,
		})
	}

	sort.SliceStable(misses, func(i, j int) bool {
		return misses[i].MatchPercentage > misses[j].MatchPercentage
	})
	if len(misses) > n {
		misses = misses[:n]
	}
	return misses
}
