package generator

// termination tracks which rows have emitted EOS. A row never reopens.
type termination struct {
	eos  int
	done []bool
	open int
}

func newTermination(batch, eos int) *termination {
	return &termination{eos: eos, done: make([]bool, batch), open: batch}
}

// force overwrites the token of every finished row with EOS.
func (m *termination) force(x []int) {
	for i, d := range m.done {
		if d {
			x[i] = m.eos
		}
	}
}

// record marks rows whose token is EOS and reports whether all rows are done.
func (m *termination) record(x []int) bool {
	for i, tok := range x {
		if !m.done[i] && tok == m.eos {
			m.done[i] = true
			m.open--
		}
	}
	return m.open == 0
}
