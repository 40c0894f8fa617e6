package action

import "sort"

// Schedule builds a dependency DAG over actions from their declared
// reads/writes (§4.2 "Dependency scheduling") and returns it as
// wavefronts: actions in the same wavefront have no declared conflict and
// may run concurrently; wavefronts themselves must run in order.
//
// An edge runs from actions[i] to actions[j] (i < j) when they conflict:
// j reads a region i writes, j writes a region i reads, or both write the
// same region. An action declaring no regions at all (Reads()==Writes()==0)
// conflicts with everything, per §4.2 "An empty declaration-set means
// fully serialized". The scheduler is deterministic: within a wavefront,
// actions are ordered by their original index (ties break by Action
// index, §4.2), and Schedule performs no randomized tie-breaking anywhere.
func Schedule(actions []Action) [][]Action {
	n := len(actions)
	if n == 0 {
		return nil
	}
	// edgesTo[j] = set of i such that i must run before j.
	edgesTo := make([]map[int]bool, n)
	for j := range edgesTo {
		edgesTo[j] = make(map[int]bool)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if conflicts(actions[i], actions[j]) {
				edgesTo[j][i] = true
			}
		}
	}

	done := make([]bool, n)
	var wavefronts [][]Action
	remaining := n
	for remaining > 0 {
		var wave []int
		for j := 0; j < n; j++ {
			if done[j] {
				continue
			}
			ready := true
			for i := range edgesTo[j] {
				if !done[i] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, j)
			}
		}
		if len(wave) == 0 {
			// Cycle in declared regions (shouldn't happen with i<j-only
			// edges, but guard against a future edge-direction change).
			for j := 0; j < n; j++ {
				if !done[j] {
					wave = append(wave, j)
				}
			}
		}
		sort.Ints(wave)
		actionsInWave := make([]Action, len(wave))
		for k, idx := range wave {
			actionsInWave[k] = actions[idx]
			done[idx] = true
		}
		wavefronts = append(wavefronts, actionsInWave)
		remaining -= len(wave)
	}
	return wavefronts
}

func conflicts(a, b Action) bool {
	ar, aw := a.Reads(), a.Writes()
	br, bw := b.Reads(), b.Writes()
	if (ar == 0 && aw == 0) || (br == 0 && bw == 0) {
		return true
	}
	return br&aw != 0 || bw&ar != 0 || aw&bw != 0
}
