package model

// ReferenceType enumerates the sum type over Reference.
type ReferenceType string

const (
	RefRead   ReferenceType = "read"
	RefWrite  ReferenceType = "write"
	RefCall   ReferenceType = "call"
	RefType   ReferenceType = "type"
	RefImport ReferenceType = "import"
	RefExport ReferenceType = "export"
)

// CallType enumerates how a call reference was shaped syntactically.
type CallType string

const (
	CallFunction    CallType = "function"
	CallMethod      CallType = "method"
	CallConstructor CallType = "constructor"
)

// Receiver describes the object expression a method call was dispatched
// through (obj.m()).
type Receiver struct {
	Name     string
	Location Location
}

// Reference is one occurrence of a name being read, written, called,
// referenced as a type, imported or exported.
type Reference struct {
	Name     SymbolName
	Type     ReferenceType
	Location Location
	ScopeId  string

	// Call-specific fields.
	CallType             CallType
	Receiver             *Receiver
	MethodName           string
	IsCallbackInvocation  bool
}

// ConfidenceLevel ranks how certain a Resolution is.
type ConfidenceLevel string

const (
	Certain   ConfidenceLevel = "certain"
	Probable  ConfidenceLevel = "probable"
	Ambiguous ConfidenceLevel = "ambiguous"
)

// rank orders ConfidenceLevel for stable sorting (lower is more certain).
func (c ConfidenceLevel) rank() int {
	switch c {
	case Certain:
		return 0
	case Probable:
		return 1
	default:
		return 2
	}
}

// ConfidenceRank exposes rank for sort comparators in other packages.
func ConfidenceRank(c ConfidenceLevel) int { return c.rank() }

// Resolution is one candidate symbol a Reference may resolve to.
type Resolution struct {
	SymbolId   SymbolId
	Confidence ConfidenceLevel
	Reason     string
}
