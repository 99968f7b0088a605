package status

import (
	"fmt"
	"sort"
	"strings"
)

// DuplicateStepError reports a timeline whose duplicated steps could not be
// reconciled into a continuous sequence. It carries the full tied group so
// the defect can be diagnosed against the source feed.
type DuplicateStepError struct {
	PlayerID int64
	Step     int
	Group    []Event
}

func (e *DuplicateStepError) Error() string {
	transitions := make([]string, 0, len(e.Group))
	for _, item := range e.Group {
		transitions = append(transitions, fmt.Sprintf("%s/%d->%s/%d",
			item.PriorState, item.PriorChance, item.ResultState, item.ResultChance))
	}
	return fmt.Sprintf("player %d: no continuous ordering for %d events tied at step %d [%s]",
		e.PlayerID, len(e.Group), e.Step, strings.Join(transitions, ", "))
}

// AssignSteps gives each dated event of a single player its ordering key
// using ties-ranked minimum ranking: events sharing a date share a step, and
// the next distinct date takes step = count of strictly earlier events + 1.
// Duplicate steps are deliberate; ReconcileSteps consumes them. Events whose
// date could not be resolved keep step zero and are excluded from ranking.
func AssignSteps(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)

	for i := range out {
		if out[i].Date == nil {
			out[i].Step = 0
			continue
		}
		step := 1
		for j := range out {
			if out[j].Date == nil || j == i {
				continue
			}
			if out[j].Date.Before(*out[i].Date) {
				step++
			}
		}
		out[i].Step = step
	}

	return out
}

// ReconcileSteps rewrites every block of events sharing one step value into a
// strictly increasing sequence whose order keeps the timeline continuous:
// each event's recorded "before" state must equal the "after" state of the
// event preceding it. Groups are settled in increasing step order so a lower
// block is final before it anchors the next one.
//
// When no ordering of a tied block satisfies continuity against the settled
// neighbors, the feed itself is inconsistent; the caller gets a
// *DuplicateStepError instead of a guessed order.
func ReconcileSteps(playerID int64, events []Event) ([]Event, error) {
	out := make([]Event, len(events))
	copy(out, events)

	holders := make(map[int][]int)
	for i := range out {
		if out[i].Step > 0 {
			holders[out[i].Step] = append(holders[out[i].Step], i)
		}
	}

	steps := make([]int, 0, len(holders))
	for s := range holders {
		steps = append(steps, s)
	}
	sort.Ints(steps)

	for _, s := range steps {
		group := holders[s]
		if len(group) < 2 {
			continue
		}

		prev := uniqueNeighbor(out, holders, s, -1)
		next := uniqueNeighbor(out, holders, s, +1)

		ordered, ok := orderTiedGroup(out, group, prev, next)
		if !ok {
			tied := make([]Event, 0, len(group))
			for _, idx := range group {
				tied = append(tied, out[idx])
			}
			return nil, &DuplicateStepError{PlayerID: playerID, Step: s, Group: tied}
		}

		// The settled block now occupies s..s+k-1 one event per step, so a
		// later group can anchor on its last element.
		delete(holders, s)
		for offset, idx := range ordered {
			out[idx].Step = s + offset
			holders[s+offset] = []int{idx}
		}
	}

	return out, nil
}

// ValidateTimeline is the post-reconciliation safety net: it fails if any
// step value is still shared between two events of the same player. A hit
// here means a reconciliation bug, not bad feed data.
func ValidateTimeline(playerID int64, events []Event) error {
	seen := make(map[int][]Event, len(events))
	for _, item := range events {
		if item.Step <= 0 {
			continue
		}
		seen[item.Step] = append(seen[item.Step], item)
	}
	for s, group := range seen {
		if len(group) > 1 {
			return &DuplicateStepError{PlayerID: playerID, Step: s, Group: group}
		}
	}
	return nil
}

// uniqueNeighbor finds the event anchoring a tied group on one side: the
// nearest occupied step in the given direction, usable as validation context
// only when exactly one event holds it. A side still tied at lookup time is
// treated as unavailable rather than picking one of its events arbitrarily.
func uniqueNeighbor(events []Event, holders map[int][]int, s, direction int) *Event {
	neighbor := -1
	for candidate := range holders {
		if direction < 0 && candidate < s && (neighbor == -1 || candidate > neighbor) {
			neighbor = candidate
		}
		if direction > 0 && candidate > s && (neighbor == -1 || candidate < neighbor) {
			neighbor = candidate
		}
	}
	if neighbor == -1 {
		return nil
	}
	group := holders[neighbor]
	if len(group) != 1 {
		return nil
	}
	return &events[group[0]]
}

// orderTiedGroup searches for an ordering of the tied events that chains
// continuously between the optional anchors. The tied events form a directed
// compatibility graph (edge u->v iff v can immediately follow u); the search
// is a backtracking walk for a Hamiltonian path with pinned endpoints,
// abandoning a partial chain as soon as a link fails. Group sizes are tiny
// in practice, so the backtracking depth is bounded by a handful of events.
func orderTiedGroup(events []Event, group []int, prev, next *Event) ([]int, bool) {
	k := len(group)
	follows := make([][]bool, k)
	for i := range follows {
		follows[i] = make([]bool, k)
		for j := range follows[i] {
			if i != j {
				follows[i][j] = events[group[i]].linksTo(events[group[j]])
			}
		}
	}

	used := make([]bool, k)
	chain := make([]int, 0, k)

	var walk func() bool
	walk = func() bool {
		if len(chain) == k {
			if next == nil {
				return true
			}
			return events[group[chain[k-1]]].linksTo(*next)
		}
		for candidate := 0; candidate < k; candidate++ {
			if used[candidate] {
				continue
			}
			if len(chain) == 0 {
				if prev != nil && !prev.linksTo(events[group[candidate]]) {
					continue
				}
			} else if !follows[chain[len(chain)-1]][candidate] {
				continue
			}
			used[candidate] = true
			chain = append(chain, candidate)
			if walk() {
				return true
			}
			chain = chain[:len(chain)-1]
			used[candidate] = false
		}
		return false
	}

	if !walk() {
		return nil, false
	}

	ordered := make([]int, k)
	for position, candidate := range chain {
		ordered[position] = group[candidate]
	}
	return ordered, true
}
