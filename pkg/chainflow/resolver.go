package chainflow

// visit states for the depth-first topological sort.
const (
	unvisited = iota
	inProgress
	done
)

// Order produces an execution order for steps in which every dependency
// precedes its dependents. Ties among steps with no relative constraint are
// broken by declaration order, so the result is deterministic.
//
// On detecting a cycle (a self-dependency is a 1-cycle), Order does not fail:
// it returns the steps in their original declaration order together with a
// *CycleError (errors.Is(err, ErrCycle)). Callers log the condition and run
// the fallback order. This leniency is deliberate; rejecting cyclic chains
// belongs at registration, and today registration does not.
//
// Dependencies naming steps absent from the list are ignored here; chain
// registration rejects them before a run ever starts.
func Order(steps []StepDefinition) ([]StepDefinition, error) {
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		index[s.Name] = i
	}

	state := make([]int, len(steps))
	ordered := make([]StepDefinition, 0, len(steps))
	var cycle []string

	var visit func(i int) bool
	visit = func(i int) bool {
		switch state[i] {
		case done:
			return true
		case inProgress:
			// Back edge on the current DFS path.
			cycle = []string{steps[i].Name}
			return false
		}
		state[i] = inProgress
		for _, dep := range steps[i].DependsOn {
			j, ok := index[dep]
			if !ok {
				continue
			}
			if !visit(j) {
				if !cycleClosed(cycle) {
					cycle = append(cycle, steps[i].Name)
				}
				return false
			}
		}
		state[i] = done
		ordered = append(ordered, steps[i])
		return true
	}

	for i := range steps {
		if !visit(i) {
			// Fall back to declaration order, reporting the cycle path
			// from its closing step back to the start.
			reverse(cycle)
			fallback := make([]StepDefinition, len(steps))
			copy(fallback, steps)
			return fallback, &CycleError{Cycle: cycle}
		}
	}

	return ordered, nil
}

// cycleClosed reports whether the recorded path already returned to the step
// the back edge pointed at. Frames unwinding above the cycle must not extend
// the path.
func cycleClosed(cycle []string) bool {
	return len(cycle) > 1 && cycle[len(cycle)-1] == cycle[0]
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
