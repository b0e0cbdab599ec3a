package extract

import "slices"

// linearize computes the C3 linearization of a class from its bases'
// linearizations and the base list. ok is false when no consistent order exists.
func linearize(self string, bases [][]string, order []string) ([]string, bool) {
	seqs := make([][]string, 0, len(bases)+1)
	for _, b := range bases {
		if len(b) > 0 {
			seqs = append(seqs, slices.Clone(b))
		}
	}
	if len(order) > 0 {
		seqs = append(seqs, slices.Clone(order))
	}

	out := []string{self}
	for {
		seqs = slices.DeleteFunc(seqs, func(s []string) bool { return len(s) == 0 })
		if len(seqs) == 0 {
			return out, true
		}
		head, found := "", false
		for _, s := range seqs {
			if !inTail(s[0], seqs) {
				head, found = s[0], true
				break
			}
		}
		if !found {
			return nil, false
		}
		out = append(out, head)
		for i := range seqs {
			if seqs[i][0] == head {
				seqs[i] = seqs[i][1:]
			}
		}
	}
}

func inTail(name string, seqs [][]string) bool {
	for _, s := range seqs {
		if slices.Contains(s[1:], name) {
			return true
		}
	}
	return false
}
