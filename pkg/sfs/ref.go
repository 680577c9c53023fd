package sfs

import (
	"net/url"
	"strconv"
)

type refKind uint8

const (
	refCurrent refKind = iota
	refID
	refName
)

// Ref identifies a rocket or target either by scene index or by name. The zero value
// is Current and lets the server pick the controlled rocket.
type Ref struct {
	kind refKind
	id   int
	name string
}

// Current refers to the rocket the player is controlling.
var Current = Ref{}

// ByID refers to a rocket by its scene index.
func ByID(id int) Ref {
	return Ref{kind: refID, id: id}
}

// ByName refers to a rocket by name.
func ByName(name string) Ref {
	return Ref{kind: refName, name: name}
}

// ParseRef reads a command-line style reference: empty is Current, an integer is ByID and
// anything else is ByName.
func ParseRef(s string) Ref {
	if s == "" {
		return Current
	}
	if n, err := strconv.Atoi(s); err == nil {
		return ByID(n)
	}
	return ByName(s)
}

// IsCurrent reports whether r is the zero reference.
func (r Ref) IsCurrent() bool {
	return r.kind == refCurrent
}

func (r Ref) String() string {
	switch r.kind {
	case refID:
		return strconv.Itoa(r.id)
	case refName:
		return r.name
	default:
		return ""
	}
}

// arg is the form used in rocket slots of /control: a string, or null for Current.
func (r Ref) arg() any {
	if r.kind == refCurrent {
		return nil
	}
	return r.String()
}

// value is the form used in id-or-name slots: keeps ints as JSON numbers.
func (r Ref) value() any {
	switch r.kind {
	case refID:
		return r.id
	case refName:
		return r.name
	default:
		return nil
	}
}

func (r Ref) query() url.Values {
	if r.kind == refCurrent {
		return nil
	}
	return url.Values{"rocketIdOrName": {r.String()}}
}
