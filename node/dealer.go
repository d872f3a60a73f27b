package node

import "struct-mapper/internal/plan"

// Dealer hands out plan keys still to be rendered, each once, in the order they
// were first needed.
type Dealer struct {
	needs []plan.Key
	done  map[plan.Key]struct{}
}

func (d *Dealer) Next() (plan.Key, bool) {
	for len(d.needs) > 0 {
		key := d.needs[0]
		d.needs = d.needs[1:]

		if _, exists := d.done[key]; !exists {
			d.Done(key)

			return key, true
		}
	}

	return plan.Key{}, false
}

func (d *Dealer) Needs(key plan.Key) {
	if _, exists := d.done[key]; !exists {
		d.needs = append(d.needs, key)
	}
}

func (d *Dealer) Done(key plan.Key) {
	if d.done == nil {
		d.done = make(map[plan.Key]struct{})
	}

	d.done[key] = struct{}{}
}
