package normalize

// Closure returns every attribute determined by attrs under fds. Attributes
// that only appear in the dependencies are included as well. Each pass that
// changes the result applies at least one more dependency, so the loop stops
// after at most len(fds)+1 passes.
func Closure(attrs AttrSet, fds []FD) AttrSet {
	closure := NewAttrSet(attrs...)
	applied := make([]bool, len(fds))
	for pass := 0; pass <= len(fds); pass++ {
		changed := false
		for i, fd := range fds {
			if applied[i] || !closure.ContainsAll(fd.LHS) {
				continue
			}
			applied[i] = true
			if !closure.ContainsAll(fd.RHS) {
				closure = closure.Union(fd.RHS)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return closure
}

// IsSuperkey reports whether attrs determines all of the attributes.
func IsSuperkey(attrs, all AttrSet, fds []FD) bool {
	return Closure(attrs, fds).ContainsAll(all)
}

// CandidateKeys returns the minimal keys of the schema, smallest first.
//
// Attributes that never appear on a right side can't be derived, so they are
// part of every key. Attributes that appear only on right sides are never
// needed. The remaining attributes are tried in combinations of increasing
// size on top of the forced ones; a combination is a key when its closure
// covers the schema and it contains no key found before it. With no key
// found the whole attribute set is returned.
func CandidateKeys(attrs AttrSet, fds []FD) []AttrSet {
	var lhs, rhs AttrSet
	for _, fd := range fds {
		lhs = lhs.Union(fd.LHS)
		rhs = rhs.Union(fd.RHS)
	}
	forced := attrs.Minus(rhs)
	free := attrs.Intersect(lhs).Intersect(rhs)

	var keys []AttrSet
	for size := 0; size <= len(free); size++ {
		for _, combo := range combinations(free, size) {
			candidate := forced.Union(combo)
			if !IsSuperkey(candidate, attrs, fds) || containsKey(keys, candidate) {
				continue
			}
			keys = append(keys, candidate)
		}
	}
	if len(keys) == 0 {
		return []AttrSet{NewAttrSet(attrs...)}
	}
	return keys
}

// FindKey returns the first smallest subset of attrs whose closure under fds
// covers attrs. It is used to mark the key of a decomposed relation.
func FindKey(attrs AttrSet, fds []FD) AttrSet {
	for size := 1; size <= len(attrs); size++ {
		for _, combo := range combinations(attrs, size) {
			if IsSuperkey(combo, attrs, fds) {
				return combo
			}
		}
	}
	return attrs
}

// PrimeAttributes is the union of the keys.
func PrimeAttributes(keys []AttrSet) AttrSet {
	var prime AttrSet
	for _, k := range keys {
		prime = prime.Union(k)
	}
	return prime
}

func containsKey(keys []AttrSet, candidate AttrSet) bool {
	for _, k := range keys {
		if candidate.ContainsAll(k) {
			return true
		}
	}
	return false
}

// combinations returns the size-element subsets of attrs in lexicographic order.
func combinations(attrs AttrSet, size int) []AttrSet {
	var out []AttrSet
	var walk func(start int, prefix AttrSet)
	walk = func(start int, prefix AttrSet) {
		if len(prefix) == size {
			out = append(out, append(AttrSet{}, prefix...))
			return
		}
		for i := start; i <= len(attrs)-(size-len(prefix)); i++ {
			walk(i+1, append(prefix, attrs[i]))
		}
	}
	walk(0, AttrSet{})
	return out
}
