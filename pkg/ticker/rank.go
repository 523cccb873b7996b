package ticker

// Rank picks one record for a candidate. Records listed in the user's
// market win, highest price first (unknown prices last, ties to the
// earliest record). With no market match the first record wins.
func Rank(records []CatalogRecord, market Market) (CatalogRecord, bool) {
	if len(records) == 0 {
		return CatalogRecord{}, false
	}

	best := -1
	for i := range records {
		if records[i].Country != market {
			continue
		}
		if best < 0 || pricedAbove(records[i].Price, records[best].Price) {
			best = i
		}
	}
	if best < 0 {
		return records[0], true
	}
	return records[best], true
}

func pricedAbove(a, b *float64) bool {
	if a == nil {
		return false
	}
	return b == nil || *a > *b
}

// merge concatenates fuzzy and full-text hits. A record found by both keeps
// its full-text position; duplicates within either list are dropped.
func merge(fuzzy, fullText []CatalogRecord) []CatalogRecord {
	inFullText := make(map[string]struct{}, len(fullText))
	for _, r := range fullText {
		inFullText[recordKey(r)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(fuzzy)+len(fullText))
	out := make([]CatalogRecord, 0, len(fuzzy)+len(fullText))
	for _, r := range fuzzy {
		k := recordKey(r)
		if _, dup := inFullText[k]; dup {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	for _, r := range fullText {
		k := recordKey(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func recordKey(r CatalogRecord) string {
	if r.ID != "" {
		return r.ID
	}
	return r.Symbol + "@" + r.ExchangeShortName
}
