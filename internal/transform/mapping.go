package transform

// Bias decides which side of an insertion a position sticks to when the
// insertion happens exactly at that position.
type Bias int

const (
	BiasBefore Bias = -1
	BiasAfter  Bias = 1
)

// MapResult is the outcome of mapping one position.
type MapResult struct {
	Pos int
	// Deleted is set when the original position lay strictly inside a range
	// that a step replaced.
	Deleted bool
}

// Mappable is anything that can map a pre-edit position to a post-edit one.
type Mappable interface {
	Map(pos int, bias Bias) int
	MapResult(pos int, bias Bias) MapResult
}

type replacedRange struct {
	start, oldSize, newSize int
}

// StepMap records the ranges one step replaced, in the coordinates of the
// document before the step.
type StepMap struct {
	ranges []replacedRange
}

func replaced(start, oldSize, newSize int) StepMap {
	if oldSize == 0 && newSize == 0 {
		return StepMap{}
	}
	return StepMap{ranges: []replacedRange{{start, oldSize, newSize}}}
}

// Map maps pos through the step.
func (m StepMap) Map(pos int, bias Bias) int { return m.MapResult(pos, bias).Pos }

// MapResult maps pos through the step and reports whether it was deleted.
func (m StepMap) MapResult(pos int, bias Bias) MapResult {
	diff := 0
	for _, r := range m.ranges {
		if r.start > pos {
			break
		}
		end := r.start + r.oldSize
		if pos <= end {
			side := bias
			if r.oldSize > 0 {
				switch pos {
				case r.start:
					side = BiasBefore
				case end:
					side = BiasAfter
				}
			}
			mapped := r.start + diff
			if side > 0 {
				mapped += r.newSize
			}
			return MapResult{Pos: mapped, Deleted: r.start < pos && pos < end}
		}
		diff += r.newSize - r.oldSize
	}
	return MapResult{Pos: pos + diff}
}

// Mapping is the composition of the step maps of a transaction, in order.
type Mapping struct {
	maps []StepMap
}

func (m *Mapping) append(sm StepMap) { m.maps = append(m.maps, sm) }

// Len returns the number of step maps.
func (m *Mapping) Len() int { return len(m.maps) }

// Slice returns the mapping made of the step maps from index from onwards.
func (m *Mapping) Slice(from int) *Mapping {
	return &Mapping{maps: m.maps[from:]}
}

// AppendMapping adds all step maps of other after those of m.
func (m *Mapping) AppendMapping(other *Mapping) {
	if other == nil {
		return
	}
	m.maps = append(m.maps, other.maps...)
}

// Map maps pos through every step.
func (m *Mapping) Map(pos int, bias Bias) int { return m.MapResult(pos, bias).Pos }

// MapResult maps pos through every step; Deleted is set if any step deleted
// it.
func (m *Mapping) MapResult(pos int, bias Bias) MapResult {
	res := MapResult{Pos: pos}
	for _, sm := range m.maps {
		r := sm.MapResult(res.Pos, bias)
		res.Pos = r.Pos
		res.Deleted = res.Deleted || r.Deleted
	}
	return res
}
