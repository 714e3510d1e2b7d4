package demand

import (
	"github.com/arvodelta/meshplan/bitset"
	"github.com/arvodelta/meshplan/capacity"
)

// MatrixFn is a DemandFunction backed by an n x n asymmetric rate
// matrix (diagonal ignored): get(S) sums M[i][j] over i in S, j not in
// S. Because Get(not S) naturally sums the reverse-direction cells,
// the shared pairFromGet helper already produces the "directional"
// GetPair spec §4.B calls for — no special-cased GetPair is needed.
// This is the variant used in scenario S5.
type MatrixFn struct {
	rates [][]float64 // rates[i][j], i,j in [0,degree)
}

// NewMatrix constructs a MatrixFn from a square rate matrix. Diagonal
// entries are never read. Degree must be >= 2.
func NewMatrix(rates [][]float64) (*MatrixFn, error) {
	n := len(rates)
	if n < 2 {
		return nil, ErrInvalidDegree
	}
	rows := make([][]float64, n)
	for i, row := range rates {
		if len(row) != n {
			return nil, ErrInvalidDegree
		}
		rows[i] = append([]float64(nil), row...)
	}
	return &MatrixFn{rates: rows}, nil
}

// Degree returns n, the matrix dimension.
func (m *MatrixFn) Degree() int { return len(m.rates) }

// Get sums rates[i][j] for i in s, j not in s.
func (m *MatrixFn) Get(s bitset.Set) (capacity.Capacity, error) {
	if err := validateSubset(s, m.Degree()); err != nil {
		return capacity.Capacity{}, err
	}

	from := s.Bits()
	to := s.Complement().Bits()
	var total float64
	for _, i := range from {
		for _, j := range to {
			total += m.rates[i][j]
		}
	}
	return capacity.At(total), nil
}

// GetPair returns (Get(s), Get(not s)).
func (m *MatrixFn) GetPair(s bitset.Set) (capacity.BidiCapacity, error) {
	return pairFromGet(m, s)
}

// Reduce aggregates rates block-wise: reduced rate from group a to
// group b is the sum of rates[i][j] for i in group a, j in group b
// (a != b, so intra-group traffic is dropped — only cross-group flow
// can ever appear on a cut between goals in different groups). A
// single group yields a degree-1 function with no valid from-set.
func (m *MatrixFn) Reduce(groups []bitset.Set) (DemandFunction, error) {
	if err := validatePartition(groups, m.Degree()); err != nil {
		return nil, err
	}
	if len(groups) < 2 {
		return &reducedFn{base: m, groups: groups, degree: len(groups)}, nil
	}

	n := len(groups)
	rates := make([][]float64, n)
	for a := range rates {
		rates[a] = make([]float64, n)
	}
	for a, ga := range groups {
		for b, gb := range groups {
			if a == b {
				continue
			}
			var sum float64
			for _, i := range ga.Bits() {
				for _, j := range gb.Bits() {
					sum += m.rates[i][j]
				}
			}
			rates[a][b] = sum
		}
	}

	reduced, err := NewMatrix(rates)
	if err != nil {
		return nil, err
	}
	if reduced.Degree() <= DefaultTabulationThreshold {
		return reduced.Tabulate(), nil
	}
	return reduced, nil
}

// Map permutes rows and columns according to perm: mapped.Get(S) ==
// base.Get({perm[i] : i in S}), so mapped cell (i, j) takes on original
// cell (perm[i], perm[j])'s rate.
func (m *MatrixFn) Map(perm []int) (DemandFunction, error) {
	if err := validatePermutation(perm, m.Degree()); err != nil {
		return nil, err
	}
	if isIdentity(perm) {
		return m, nil
	}

	n := m.Degree()
	rates := make([][]float64, n)
	for i := range rates {
		rates[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rates[i][j] = m.rates[perm[i]][perm[j]]
		}
	}
	return NewMatrix(rates)
}

// Tabulate materializes MatrixFn as a Table when the degree is within
// DefaultTabulationThreshold; otherwise it returns m unchanged.
func (m *MatrixFn) Tabulate() DemandFunction {
	return TabulateWithThreshold(m, DefaultTabulationThreshold)
}
