package dataset

// Predicate selects observations.
type Predicate func(Observation) bool

// InCategory matches observations flagged with the category. The name may
// carry the "Classe_" column prefix.
func InCategory(name string) Predicate {
	name = NormalizeCategory(name)
	return func(o Observation) bool { return o.InCategory(name) }
}

// ForProduct matches every observation of a product, at any establishment.
func ForProduct(productID string) Predicate {
	return func(o Observation) bool { return o.ProductID == productID }
}

// ForEstablishment matches every observation collected at an establishment.
func ForEstablishment(establishmentID string) Predicate {
	return func(o Observation) bool { return o.EstablishmentID == establishmentID }
}

// ForProductAt matches a product at a single establishment.
func ForProductAt(productID, establishmentID string) Predicate {
	return And(ForProduct(productID), ForEstablishment(establishmentID))
}

// And matches observations satisfying every predicate.
func And(preds ...Predicate) Predicate {
	return func(o Observation) bool {
		for _, p := range preds {
			if !p(o) {
				return false
			}
		}
		return true
	}
}
