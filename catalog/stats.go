package catalog

import "github.com/hupe1980/proptable"

// PropertyStats summarizes one property table.
type PropertyStats struct {
	Name  string
	Type  proptable.PropertyType
	Kind  proptable.Kind
	Size  int
	Valid int
	Dirty bool
	Path  string

	// Min and Max are set when HasRange is true.
	Min, Max float32
	HasRange bool
}

// Stats returns statistics for every property, ordered by name. A closed
// catalog has no statistics.
func (c *Catalog) Stats() []PropertyStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil
	}

	stats := make([]PropertyStats, 0, len(c.tables))
	c.names.Ascend(func(name string) bool {
		t := c.tables[name]
		s := PropertyStats{
			Name:  name,
			Type:  t.Type(),
			Kind:  t.Kind(),
			Size:  t.Size(),
			Valid: t.ValidCount(),
			Dirty: t.Dirty(),
			Path:  t.Path(),
		}
		lo, okLo := t.Min()
		hi, okHi := t.Max()
		if okLo && okHi {
			s.Min, s.Max, s.HasRange = lo, hi, true
		}
		stats = append(stats, s)
		return true
	})
	return stats
}
