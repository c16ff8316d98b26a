package whatsapp

import (
	"strings"

	"github.com/sharpchat/server/internal/business"
)

// matchThreshold is the minimum similarity for a fuzzy name match.
const matchThreshold = 0.6

// Ratio is a sequence-similarity measure in [0,1]: twice the total length of
// the longest matching blocks divided by the combined length. Identical
// strings score 1.0, disjoint strings 0.0.
func Ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchedSize(ar, br)) / float64(total)
}

// matchedSize sums the sizes of the longest matching blocks, found greedily:
// take the longest common run, then recurse on the pieces to its left and
// right.
func matchedSize(a, b []rune) int {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	matched := 0

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatch(a, s.alo, s.ahi, s.blo, s.bhi, b2j)
		if size == 0 {
			continue
		}
		matched += size
		queue = append(queue,
			span{s.alo, i, s.blo, j},
			span{i + size, s.ahi, j + size, s.bhi},
		)
	}
	return matched
}

// longestMatch finds the longest run common to a[alo:ahi] and b[blo:bhi],
// using a per-row map from end position to run length.
func longestMatch(a []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}

// resolveBusiness maps the user's selection to a business record. A BUS-
// prefixed token is an exact ID lookup; anything else is a fuzzy name match
// that must clear the threshold. Ties go to the higher score, scanned in list
// order.
func resolveBusiness(input string, records []business.Record) (*business.Record, bool) {
	token := strings.TrimSpace(input)

	if id := strings.ToUpper(token); strings.HasPrefix(id, "BUS-") {
		for i := range records {
			if strings.EqualFold(records[i].BusinessID, id) {
				return &records[i], true
			}
		}
		return nil, false
	}

	needle := strings.ToLower(token)
	var best *business.Record
	bestScore := 0.0
	for i := range records {
		score := Ratio(needle, strings.ToLower(records[i].Name))
		if score > bestScore {
			best = &records[i]
			bestScore = score
		}
	}
	if best == nil || bestScore < matchThreshold {
		return nil, false
	}
	return best, true
}
