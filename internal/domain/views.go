package domain

// The pipeline keeps one canonical loaded table and derives named views from
// it. The equity working set drives the sensitivity report; the credit set
// keeps cash and straight bonds that the working set excludes.

var workingSetTypes = map[string]bool{
	TypeConvertibleBond: true,
	TypeCommonStock:     true,
	TypeWarrant:         true,
}

var creditSetTypes = map[string]bool{
	TypeCorporateBond:   true,
	TypeConvertibleBond: true,
	TypeCash:            true,
}

var holdingsTableTypes = map[string]bool{
	TypeConvertibleBond: true,
	TypeCorporateBond:   true,
	TypeOpenEndFund:     true,
	TypeWarrant:         true,
	TypeCommonStock:     true,
}

func filterByType(positions []Position, allowed map[string]bool) []Position {
	out := make([]Position, 0, len(positions))
	for _, p := range positions {
		if allowed[p.SecurityType] {
			out = append(out, p)
		}
	}
	return out
}

// WorkingSet returns the equity-sensitivity working set: convertibles,
// common stocks and warrants.
func WorkingSet(positions []Position) []Position {
	return filterByType(positions, workingSetTypes)
}

// CreditSet returns the credit-analysis view: corporate bonds, convertibles
// and cash.
func CreditSet(positions []Position) []Position {
	return filterByType(positions, creditSetTypes)
}

// HoldingsSet returns the securities eligible for the top-holdings table.
func HoldingsSet(positions []Position) []Position {
	return filterByType(positions, holdingsTableTypes)
}
