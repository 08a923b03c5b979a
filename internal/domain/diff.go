package domain

// IDSet is a set of alert IDs from one poll.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids []string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// NewIDs returns the ids in current that are absent from previous, in the
// order they appear in current. Duplicates in current are reported once.
func NewIDs(current []string, previous IDSet) []string {
	var fresh []string
	seen := make(IDSet, len(current))
	for _, id := range current {
		if previous.Has(id) || seen.Has(id) {
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh
}

// ActiveAlerts collects the active alerts from results in feed order. When an
// ID repeats, the later record replaces the earlier one at its original
// position.
func ActiveAlerts(results []ItemResult) []Alert {
	alerts := make([]Alert, 0, len(results))
	index := make(map[string]int, len(results))
	for _, r := range results {
		if r.Outcome != OutcomeActive {
			continue
		}
		if i, ok := index[r.Alert.ID]; ok {
			alerts[i] = r.Alert
			continue
		}
		index[r.Alert.ID] = len(alerts)
		alerts = append(alerts, r.Alert)
	}
	return alerts
}

// AlertIDs returns the IDs of alerts in order.
func AlertIDs(alerts []Alert) []string {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	return ids
}
