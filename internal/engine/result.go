package engine

// Throw records the dices rolled for one throw of an expression.
type Throw struct {
	Dice    string   `json:"dice"`
	Results []int    `json:"results"`
	Names   []string `json:"names,omitempty"`
}

// Resolved is the outcome of resolving an expression.
type Resolved struct {
	// Text is "<signature> : <description>", followed by " => <scalar>" when HasScalar.
	Text        string
	Description string
	HasScalar   bool
	Scalar      float64
	Throws      []Throw
}

// value is the resolved form of a single node.
type value struct {
	description string
	scalar      float64
	single      bool
}
