package schema

// SortByDependencies orders tables so that every table comes after the
// tables its foreign keys reference. References to tables outside the list
// are ignored. Cycles are broken with a score favoring tables that take part
// in a cycle, have few unresolved references and are referenced by many
// pending tables; ties go to the name that sorts last. Otherwise the input
// order is kept.
func SortByDependencies(tables []*Table) []*Table {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}
	deps := make(map[string][]string, len(tables))
	for _, t := range tables {
		for _, dep := range t.Dependencies() {
			if known[dep] {
				deps[t.Name] = append(deps[t.Name], dep)
			}
		}
	}

	sorted := make([]*Table, 0, len(tables))
	processed := make(map[string]bool, len(tables))

	for len(sorted) < len(tables) {
		added := false

		for _, t := range tables {
			if processed[t.Name] {
				continue
			}
			ready := true
			for _, dep := range deps[t.Name] {
				if !processed[dep] {
					ready = false
					break
				}
			}
			if ready {
				sorted = append(sorted, t)
				processed[t.Name] = true
				added = true
			}
		}
		if added {
			continue
		}

		// Only cycles are left.
		var best *Table
		bestScore := 0
		for _, t := range tables {
			if processed[t.Name] {
				continue
			}
			score := 0
			circular := false
			for _, dep := range deps[t.Name] {
				if processed[dep] {
					continue
				}
				score -= 100
				for _, back := range deps[dep] {
					if back == t.Name {
						circular = true
					}
				}
			}
			if circular {
				score += 500
			}
			for _, other := range tables {
				if processed[other.Name] || other.Name == t.Name {
					continue
				}
				for _, dep := range deps[other.Name] {
					if dep == t.Name {
						score += 10
					}
				}
			}
			if best == nil || score > bestScore || (score == bestScore && t.Name > best.Name) {
				best, bestScore = t, score
			}
		}
		if best == nil {
			// duplicate names
			break
		}
		sorted = append(sorted, best)
		processed[best.Name] = true
	}
	return sorted
}
