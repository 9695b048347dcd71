// Package genericstatus defines the closed enumeration of case lifecycle
// states. Upstream systems send free-text status labels; the status registry
// maps those to one of these values. The open/closed transition rule in the
// case ledger only looks at IsFinal.
package genericstatus

// ID is a generic status identifier. Values are part of the wire contract
// with upstream notifiers and must not be renumbered.
type ID int

const (
	// Unknown is the sentinel returned when no mapping exists for a label.
	Unknown ID = -1

	Received      ID = 1
	Ongoing       ID = 2
	InfoRequested ID = 3
	InfoSupplied  ID = 4
	Accepted      ID = 9
	Rejected      ID = 10
	Canceled      ID = 11
	Closed        ID = 12
)

type definition struct {
	label string
	final bool
}

var statuses = map[ID]definition{
	Received:      {"RECEIVED", false},
	Ongoing:       {"ONGOING", false},
	InfoRequested: {"INFO_REQUESTED", false},
	InfoSupplied:  {"INFO_SUPPLIED", false},
	Accepted:      {"ACCEPTED", true},
	Rejected:      {"REJECTED", true},
	Canceled:      {"CANCELED", true},
	Closed:        {"CLOSED", true},
}

// Exists reports whether id is a member of the enumeration. The sentinel
// Unknown is not a member.
func Exists(id int) bool {
	_, ok := statuses[ID(id)]
	return ok
}

// IsFinal reports whether id denotes a closed case. Unknown and unmapped
// values are not final.
func IsFinal(id int) bool {
	def, ok := statuses[ID(id)]
	return ok && def.final
}

func (id ID) String() string {
	if def, ok := statuses[id]; ok {
		return def.label
	}
	return "UNKNOWN"
}

// All returns the enumeration members in ascending id order.
func All() []ID {
	return []ID{Received, Ongoing, InfoRequested, InfoSupplied, Accepted, Rejected, Canceled, Closed}
}
