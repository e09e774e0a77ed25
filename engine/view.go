package engine

import (
	"math"
	"sort"
)

// ============================================================================
// TABLE + VIEWS — Immutable dataset and zero-copy projections
// ============================================================================
// Table holds the normalized observations. Views hold index lists into a
// table and never copy or mutate it.
//
// Implementations of Rows:
//   *Table        — the full normalized dataset
//   View          — filtered subset (indices into a Table)
//   FilteredView  — View produced by the country/year-range filter
//   YearSlice     — View of a single comparison year
// ============================================================================

// Rows provides indexed read access to observations.
type Rows interface {
	Len() int
	At(index int) Observation
}

// ============================================================================
// TABLE
// ============================================================================

// Table is the normalized long-format dataset. It is immutable once built:
// callers only ever read it, so a cached *Table can be shared freely.
//
// A nil *Table means "not loaded". NewTable(nil) is a loaded, empty table.
type Table struct {
	obs []Observation
}

// NewTable builds a Table from observations, enforcing the table invariants:
// observations with an empty country or a non-finite GDP are dropped, and only
// the first observation for each (country, year) pair is kept.
// The input slice is copied.
func NewTable(observations []Observation) *Table {
	type key struct {
		country string
		year    int
	}
	seen := make(map[key]bool, len(observations))
	obs := make([]Observation, 0, len(observations))
	for _, o := range observations {
		if o.Country == "" || math.IsNaN(o.GDP) || math.IsInf(o.GDP, 0) {
			continue
		}
		k := key{o.Country, o.Year}
		if seen[k] {
			continue
		}
		seen[k] = true
		obs = append(obs, o)
	}
	return &Table{obs: obs}
}

// Len returns the number of observations. Safe on a nil table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.obs)
}

// At returns the observation at index i.
func (t *Table) At(i int) Observation {
	if t == nil || i < 0 || i >= len(t.obs) {
		return Observation{}
	}
	return t.obs[i]
}

// IsEmpty reports whether the table holds no observations.
func (t *Table) IsEmpty() bool { return t.Len() == 0 }

// Observations returns a copy of all observations in table order.
func (t *Table) Observations() []Observation {
	return collect(t)
}

// Countries returns the distinct countries in lexicographic order.
func (t *Table) Countries() []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < t.Len(); i++ {
		c := t.obs[i].Country
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct years in ascending order.
func (t *Table) Years() []int {
	seen := make(map[int]bool)
	var out []int
	for i := 0; i < t.Len(); i++ {
		y := t.obs[i].Year
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

// YearBounds returns the smallest and largest year present.
// ok is false for an empty table.
func (t *Table) YearBounds() (min, max int, ok bool) {
	for i := 0; i < t.Len(); i++ {
		y := t.obs[i].Year
		if !ok || y < min {
			min = y
		}
		if !ok || y > max {
			max = y
		}
		ok = true
	}
	return min, max, ok
}

// ============================================================================
// VIEW — filtered subset (zero-copy)
// ============================================================================

// View is a read-only subset of a Table, held as indices into the parent.
type View struct {
	parent  *Table
	indices []int
}

func newView(parent *Table, indices []int) View {
	return View{parent: parent, indices: indices}
}

func (v View) Len() int { return len(v.indices) }

func (v View) At(i int) Observation {
	if i < 0 || i >= len(v.indices) {
		return Observation{}
	}
	return v.parent.At(v.indices[i])
}

// IsEmpty reports whether the view selects no observations.
func (v View) IsEmpty() bool { return len(v.indices) == 0 }

// Observations returns a copy of the selected observations in table order.
func (v View) Observations() []Observation {
	return collect(v)
}

// FilteredView is the country + year-range projection used for trend display.
type FilteredView struct {
	View
}

// YearSlice is the single-year projection used for ranking display.
type YearSlice struct {
	View
	Year int
}

func collect(rows Rows) []Observation {
	out := make([]Observation, rows.Len())
	for i := range out {
		out[i] = rows.At(i)
	}
	return out
}
