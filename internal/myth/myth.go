package myth

// MythFact is one myth/reality pair from the static awareness catalog.
type MythFact struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Language string `json:"language"`
	Myth     string `json:"myth"`
	Fact     string `json:"fact"`
}
