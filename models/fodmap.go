package models

// Canonical 5-group FODMAP taxonomy. The alternative 4-way chemical partition
// (oligo-/di-/mono-saccharides, polyols) maps onto it as: oligosaccharides =
// fructans + galactans, disaccharides = lactose, monosaccharides = fructose.
const (
	GroupFructose  = "fructose"
	GroupLactose   = "lactose"
	GroupFructans  = "fructans"
	GroupGalactans = "galactans"
	GroupPolyols   = "polyols"
)

var AllGroups = []string{
	GroupFructose,
	GroupLactose,
	GroupFructans,
	GroupGalactans,
	GroupPolyols,
}
