package node

import "strconv"

// Stem hands out unique names built from one stem: "target1", "target2". Reserved
// names are skipped.
type Stem struct {
	stem  string
	last  int
	taken map[string]bool
}

// NewStem creates a Stem that never returns any of reserved.
func NewStem(stem string, reserved ...string) *Stem {
	s := &Stem{stem: stem, taken: make(map[string]bool, len(reserved))}
	for _, name := range reserved {
		s.taken[name] = true
	}

	return s
}

// Next returns the next free name.
func (s *Stem) Next() string {
	for {
		s.last++

		name := s.stem + strconv.Itoa(s.last)
		if !s.taken[name] {
			s.taken[name] = true
			return name
		}
	}
}
