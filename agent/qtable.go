package agent

// ValueEntry holds the learned estimate and visit count for one
// (state, action) pair.
type ValueEntry struct {
	Value  float64 `json:"value"`
	Visits int     `json:"visits"`
}

// ValueTable maps discretised (state, action) pairs to value estimates. In
// double mode two independently updated tables are kept; each update
// bootstraps its target from the opposite table, which halves the
// overestimation bias a single bootstrapped table accumulates.
type ValueTable struct {
	double bool
	q      map[string]map[string]*ValueEntry
	q2     map[string]map[string]*ValueEntry
}

// NewValueTable returns an empty table in single or double mode.
func NewValueTable(double bool) *ValueTable {
	t := &ValueTable{
		double: double,
		q:      make(map[string]map[string]*ValueEntry),
	}
	if double {
		t.q2 = make(map[string]map[string]*ValueEntry)
	}
	return t
}

// Double reports whether the table runs in double-Q mode.
func (t *ValueTable) Double() bool {
	return t.double
}

// entry lazily creates a zero-valued entry, so unvisited pairs behave as
// estimate 0 everywhere.
func entry(m map[string]map[string]*ValueEntry, state, action string) *ValueEntry {
	actions, ok := m[state]
	if !ok {
		actions = make(map[string]*ValueEntry)
		m[state] = actions
	}
	e, ok := actions[action]
	if !ok {
		e = &ValueEntry{}
		actions[action] = e
	}
	return e
}

func maxValue(m map[string]map[string]*ValueEntry, state string) float64 {
	actions, ok := m[state]
	if !ok || len(actions) == 0 {
		return 0
	}
	first := true
	best := 0.0
	for _, e := range actions {
		if first || e.Value > best {
			best = e.Value
			first = false
		}
	}
	return best
}

// Estimate returns the current value for a pair without creating entries. In
// double mode the two tables are averaged, which is also what greedy action
// selection ranks by.
func (t *ValueTable) Estimate(state StateKey, action Action) float64 {
	s, a := state.String(), action.Key()
	v := lookup(t.q, s, a)
	if !t.double {
		return v
	}
	return (v + lookup(t.q2, s, a)) / 2
}

func lookup(m map[string]map[string]*ValueEntry, state, action string) float64 {
	if actions, ok := m[state]; ok {
		if e, ok := actions[action]; ok {
			return e.Value
		}
	}
	return 0
}

// Update applies one temporal-difference step:
//
//	V(s,a) += alpha * (reward + gamma*max_a' V(s',a')*(1-terminal) - V(s,a))
//
// In double mode pickFirst chooses which table absorbs the update (the caller
// draws it fairly at random); the bootstrap target always comes from the
// other table. Terminal transitions never bootstrap.
func (t *ValueTable) Update(state StateKey, action Action, reward float64, next StateKey, terminal bool, alpha, gamma float64, pickFirst bool) {
	s, a := state.String(), action.Key()

	primary := t.q
	bootstrap := t.q
	if t.double {
		if pickFirst {
			primary, bootstrap = t.q, t.q2
		} else {
			primary, bootstrap = t.q2, t.q
		}
	}

	target := reward
	if !terminal {
		target += gamma * maxValue(bootstrap, next.String())
	}

	e := entry(primary, s, a)
	e.Value += alpha * (target - e.Value)
	e.Visits++
}

// States returns the number of distinct state keys tracked, counting both
// tables in double mode.
func (t *ValueTable) States() int {
	n := len(t.q)
	if t.double {
		n += len(t.q2)
	}
	return n
}

// Pairs returns the number of (state, action) entries across all tables.
func (t *ValueTable) Pairs() int {
	n := 0
	for _, actions := range t.q {
		n += len(actions)
	}
	if t.double {
		for _, actions := range t.q2 {
			n += len(actions)
		}
	}
	return n
}

// Values returns every stored estimate, both tables in double mode. Used by
// offline analysis; order is unspecified.
func (t *ValueTable) Values() []float64 {
	out := make([]float64, 0, t.Pairs())
	for _, actions := range t.q {
		for _, e := range actions {
			out = append(out, e.Value)
		}
	}
	if t.double {
		for _, actions := range t.q2 {
			for _, e := range actions {
				out = append(out, e.Value)
			}
		}
	}
	return out
}

// snapshot copies a table's entries for serialisation.
func snapshotTable(m map[string]map[string]*ValueEntry) map[string]map[string]ValueEntry {
	out := make(map[string]map[string]ValueEntry, len(m))
	for state, actions := range m {
		row := make(map[string]ValueEntry, len(actions))
		for action, e := range actions {
			row[action] = *e
		}
		out[state] = row
	}
	return out
}

func restoreTable(snap map[string]map[string]ValueEntry) map[string]map[string]*ValueEntry {
	out := make(map[string]map[string]*ValueEntry, len(snap))
	for state, actions := range snap {
		row := make(map[string]*ValueEntry, len(actions))
		for action, e := range actions {
			copied := e
			row[action] = &copied
		}
		out[state] = row
	}
	return out
}
