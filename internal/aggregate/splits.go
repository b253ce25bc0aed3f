package aggregate

import (
	"sort"

	"spendwise/internal/core"
)

// Unlabeled is the bucket for expenses without a resolvable split.
const Unlabeled = "Unlabeled"

type (
	SplitSummary struct {
		Key   string
		Name  string
		Color string
		Total float64
		Count int
	}

	// Summary is ordered: catalog splits first in catalog order, then splits
	// seen only on expenses in first-seen order, then the Unlabeled bucket.
	Summary []SplitSummary

	SummaryOptions struct {
		// IncludeEmpty keeps catalog splits that have no expenses.
		IncludeEmpty bool
	}

	Share struct {
		Name    string
		Color   string
		Percent float64
	}
)

// SummaryBySplit groups expenses by split. A split name comes from the
// populated reference, then from the catalog. When a catalog is given, a
// bare id missing from it is treated as a deleted split and lands in the
// Unlabeled bucket; without a catalog the id itself is used as the name.
func SummaryBySplit(expenses []core.Expense, splits []core.Split, opts SummaryOptions) Summary {
	catalog := make(map[string]core.Split, len(splits))
	for _, s := range splits {
		catalog[s.ID] = s
	}

	groups := make(map[string]*SplitSummary)
	var order []string
	bucket := func(key, name, color string) *SplitSummary {
		if g, ok := groups[key]; ok {
			return g
		}
		g := &SplitSummary{Key: key, Name: name, Color: color}
		groups[key] = g
		order = append(order, key)
		return g
	}

	if opts.IncludeEmpty {
		for _, s := range splits {
			bucket(s.ID, s.Name, orFallback(s.Color))
		}
	}

	var unlabeled *SplitSummary
	for _, e := range expenses {
		key, name, color, ok := resolve(e.Split, catalog, splits != nil)
		var g *SplitSummary
		if ok {
			g = bucket(key, name, color)
		} else {
			if unlabeled == nil {
				unlabeled = &SplitSummary{Key: "", Name: Unlabeled, Color: core.FallbackColor}
			}
			g = unlabeled
		}
		g.Total += value(e.Amount)
		g.Count++
	}

	out := make(Summary, 0, len(order)+1)
	for _, s := range splits {
		if g, ok := groups[s.ID]; ok {
			out = append(out, *g)
			delete(groups, s.ID)
		}
	}
	for _, key := range order {
		if g, ok := groups[key]; ok {
			out = append(out, *g)
		}
	}
	if unlabeled != nil {
		out = append(out, *unlabeled)
	}
	return out
}

func resolve(ref *core.SplitRef, catalog map[string]core.Split, haveCatalog bool) (key, name, color string, ok bool) {
	if ref == nil || (ref.ID == "" && ref.Name == "") {
		return "", "", "", false
	}
	key = ref.ID
	if key == "" {
		key = ref.Name
	}
	if ref.Name != "" {
		color = ref.Color
		if s, found := catalog[ref.ID]; found && color == "" {
			color = s.Color
		}
		return key, ref.Name, orFallback(color), true
	}
	if s, found := catalog[ref.ID]; found {
		return key, s.Name, orFallback(s.Color), true
	}
	if haveCatalog {
		return "", "", "", false
	}
	return key, ref.ID, core.FallbackColor, true
}

func orFallback(color string) string {
	if color == "" {
		return core.FallbackColor
	}
	return color
}

// ByName indexes the summary by display name. Splits sharing a name are merged.
func (s Summary) ByName() map[string]SplitSummary {
	out := make(map[string]SplitSummary, len(s))
	for _, g := range s {
		if cur, ok := out[g.Name]; ok {
			cur.Total += g.Total
			cur.Count += g.Count
			out[g.Name] = cur
			continue
		}
		out[g.Name] = g
	}
	return out
}

func (s Summary) Total() float64 {
	var sum float64
	for _, g := range s {
		sum += g.Total
	}
	return sum
}

// CategoryShares gives each group's percentage of the summary total.
func CategoryShares(s Summary) []Share {
	total := s.Total()
	out := make([]Share, 0, len(s))
	for _, g := range s {
		var pct float64
		if total > 0 {
			pct = g.Total / total * 100
		}
		out = append(out, Share{Name: g.Name, Color: g.Color, Percent: pct})
	}
	return out
}

// FromStats converts the server summary payload into a Summary ordered by
// the catalog, then by name for splits the catalog does not know.
func FromStats(stats core.StatsSummary, splits []core.Split) Summary {
	out := make(Summary, 0, len(stats.Summary))
	seen := make(map[string]bool, len(stats.Summary))
	for _, s := range splits {
		st, ok := stats.Summary[s.Name]
		if !ok || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, SplitSummary{Key: s.ID, Name: s.Name, Color: orFallback(st.Color), Total: value(st.Total), Count: st.Count})
	}
	var rest []string
	for name := range stats.Summary {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		st := stats.Summary[name]
		out = append(out, SplitSummary{Key: name, Name: name, Color: orFallback(st.Color), Total: value(st.Total), Count: st.Count})
	}
	return out
}
