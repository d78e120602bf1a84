package metadata

// ProductCardinality multiplies the cardinalities of mds.
//
// Any exact zero makes the product an exact zero. A single input keeps its
// own type. Otherwise the product is only an upper bound and is reported as
// an estimate.
func ProductCardinality(mds ...*Metadata) Cardinality {
	if len(mds) == 0 {
		return ExactCardinality(1)
	}
	if len(mds) == 1 {
		return mds[0].Cardinality
	}
	product := 1.0
	for _, md := range mds {
		if md.Cardinality.IsExactZero() {
			return ExactCardinality(0)
		}
		product *= md.Cardinality.Value
	}
	return EstimateCardinality(product)
}

// UnionVariables merges the variables of mds in order of first appearance.
// A variable can be undefined in the union if it can be undefined in any
// input that declares it.
func UnionVariables(mds ...*Metadata) []Variable {
	var out []Variable
	index := make(map[string]int)
	for _, md := range mds {
		for _, v := range md.Variables {
			if i, ok := index[v.Name]; ok {
				out[i].CanBeUndef = out[i].CanBeUndef || v.CanBeUndef
				continue
			}
			index[v.Name] = len(out)
			out = append(out, v)
		}
	}
	return out
}

// SharedVariables returns the names declared by every one of mds, in the
// order of the first input. It returns nil for fewer than two inputs.
func SharedVariables(mds ...*Metadata) []string {
	if len(mds) < 2 {
		return nil
	}
	var shared []string
	for _, v := range mds[0].Variables {
		inAll := true
		for _, md := range mds[1:] {
			if _, ok := md.Variable(v.Name); !ok {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, v.Name)
		}
	}
	return shared
}

// AnyUndef reports whether any of the named variables can be undefined in
// any of mds.
func AnyUndef(names []string, mds ...*Metadata) bool {
	for _, md := range mds {
		for _, name := range names {
			if v, ok := md.Variable(name); ok && v.CanBeUndef {
				return true
			}
		}
	}
	return false
}

// SumRequestTime adds up the request times of mds.
func SumRequestTime(mds ...*Metadata) float64 {
	total := 0.0
	for _, md := range mds {
		total += md.RequestTime
	}
	return total
}

// States collects the validation states of mds.
func States(mds ...*Metadata) []*ValidationState {
	states := make([]*ValidationState, len(mds))
	for i, md := range mds {
		states[i] = md.State
	}
	return states
}
