// Package rule holds the condition trees that gate workflows. A rule is
// parsed once, when its workflow is loaded, and evaluated against live host
// state every time the workflow runs.
package rule

// Node is a parsed condition. The set of node types is closed: And, Or, Not,
// Leaf, Legacy and Unknown. A nil Node always holds.
type Node interface {
	node()
}

// Kind names the host figure a Leaf tests
type Kind string

const (
	KindDisk   Kind = "disk"
	KindCPU    Kind = "cpu"
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindTime   Kind = "time"
)

// leafKinds is the order in which a condition object's keys are checked
var leafKinds = []Kind{KindDisk, KindCPU, KindMemory, KindFile, KindTime}

// And holds when every child holds. An empty And holds.
type And struct {
	Children []Node
}

// Or holds when any child holds. An empty Or does not hold.
type Or struct {
	Children []Node
}

// Not negates its child
type Not struct {
	Child Node
}

// Leaf is a single predicate on one host figure. Valid is false when Text
// could not be parsed; such a leaf never holds.
type Leaf struct {
	Kind  Kind
	Text  string
	Valid bool

	// Threshold applies to disk, cpu and memory leaves
	Threshold float64
	// Path applies to file leaves
	Path string
	// FromHour and ToHour bound time leaves, inclusive
	FromHour int
	ToHour   int
}

// Legacy is the flat string rule form. Only a "disk > N" clause inside the
// string is honoured; anything else holds.
type Legacy struct {
	Text      string
	HasDisk   bool
	Threshold float64
}

// Unknown is any shape the parser does not recognise. It always holds.
type Unknown struct {
	Raw interface{}
}

func (And) node()     {}
func (Or) node()      {}
func (Not) node()     {}
func (Leaf) node()    {}
func (Legacy) node()  {}
func (Unknown) node() {}
