package git

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// ClosestBranch returns the branch whose name is nearest to name by edit
// distance, or "" when nothing is close enough to be a plausible typo.
func ClosestBranch(name string, branches []string) string {
	best, bestDist := "", -1
	for _, b := range branches {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(b))
		if bestDist < 0 || d < bestDist {
			best, bestDist = b, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(name)/3) {
		return ""
	}
	return best
}
