package domain

// Source identifies one external government-data source.
type Source string

// Known sources, in merge priority order (see SourcePriority).
const (
	SourceCheckbook Source = "checkbook"
	SourceSenateLDA Source = "senate_lda"
	SourceFEC       Source = "fec"
	SourceNYSEthics Source = "nys_ethics"
)

// SourcePriority is the fixed ordering used when grouping merged results by
// source. Sources absent from this list sort after known ones, by name.
var SourcePriority = []Source{
	SourceCheckbook,
	SourceSenateLDA,
	SourceFEC,
	SourceNYSEthics,
}

// PriorityIndex returns the position of s in SourcePriority, or
// len(SourcePriority) if unknown.
func PriorityIndex(s Source) int {
	for i, p := range SourcePriority {
		if p == s {
			return i
		}
	}
	return len(SourcePriority)
}

// Jurisdiction scopes a search to one level of government.
type Jurisdiction string

// Recognized jurisdictions.
const (
	JurisdictionNYC     Jurisdiction = "NYC"
	JurisdictionNYS     Jurisdiction = "NYS"
	JurisdictionFederal Jurisdiction = "Federal"
	JurisdictionAll     Jurisdiction = "all"
)

// ParseJurisdiction maps a request string onto a Jurisdiction.
// Empty input means "all". Unknown values are rejected by the caller
// via the ok flag.
func ParseJurisdiction(s string) (Jurisdiction, bool) {
	switch s {
	case "", "all", "All", "ALL":
		return JurisdictionAll, true
	case "NYC", "nyc":
		return JurisdictionNYC, true
	case "NYS", "nys":
		return JurisdictionNYS, true
	case "Federal", "federal":
		return JurisdictionFederal, true
	}
	return "", false
}

// Matches reports whether a source registered under have should be queried
// for a request scoped to want. JurisdictionAll matches everything.
func (j Jurisdiction) Matches(have Jurisdiction) bool {
	return j == JurisdictionAll || j == have
}
