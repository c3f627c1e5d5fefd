package circuit

// Permutation builds the copy-constraint permutation of the finalized
// circuit.
//
// The permutation s is composed of cycles of maximum length such that
//
//	s.(l‖r‖o) = (l‖r‖o)
//
// where l‖r‖o is the concatenation of the wire indices of the rows
// [ placeholders | gates | padding ]. It is encoded as a flat slice of size
// 3·Size(): the i-th position of l‖r‖o is linked to position
// permutation[i], and following the links enumerates the equivalence class
// of one variable. Positions of unused slots and padding rows all share the
// class of the reserved zero wire.
func (cs *CS) Permutation() ([]int64, error) {
	if !cs.finalized {
		return nil, ErrNotFinalized
	}

	sizeSolution := int(cs.size)
	nbVariables := len(cs.values)

	permutation := make([]int64, 3*sizeSolution)
	for i := range permutation {
		permutation[i] = -1
	}

	// position -> variable ID; unset positions keep the zero wire
	lro := make([]int, 3*sizeSolution)
	for i, v := range cs.public {
		lro[i] = int(v)
	}
	offset := len(cs.public)
	for i := range cs.gates {
		lro[offset+i] = int(cs.gates[i].XA)
		lro[sizeSolution+offset+i] = int(cs.gates[i].XB)
		lro[2*sizeSolution+offset+i] = int(cs.gates[i].XC)
	}

	// cycle[id] is the last position where id was seen
	cycle := make([]int64, nbVariables)
	for i := range cycle {
		cycle[i] = -1
	}

	for i := 0; i < len(lro); i++ {
		if cycle[lro[i]] != -1 {
			// the variable was already seen; link this position to the
			// previous one
			permutation[i] = cycle[lro[i]]
		}
		cycle[lro[i]] = int64(i)
	}

	// close the cycles: the first position of each class links back to the
	// last one
	for i := 0; i < len(permutation); i++ {
		if permutation[i] == -1 {
			permutation[i] = cycle[lro[i]]
		}
	}

	return permutation, nil
}
