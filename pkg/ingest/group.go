package ingest

import "sort"

// UnknownExchange collects instruments that have no exchange short name.
const UnknownExchange = "UNKNOWN"

// Groups maps an exchange short name to its instruments in feed order.
type Groups map[string][]Instrument

func GroupByExchange(instruments []Instrument) Groups {
	groups := make(Groups)
	for _, inst := range instruments {
		key := inst.exchangeShortName()
		if key == "" {
			key = UnknownExchange
		}
		groups[key] = append(groups[key], inst)
	}
	return groups
}

// Exchanges returns the group keys sorted.
func (g Groups) Exchanges() []string {
	out := make([]string, 0, len(g))
	for k := range g {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (g Groups) Count() int {
	n := 0
	for _, list := range g {
		n += len(list)
	}
	return n
}
