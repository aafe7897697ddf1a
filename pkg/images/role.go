package images

import "fmt"

// Role is the part an image plays in the graph.
type Role int

const (
	RoleInput Role = iota
	RoleOutput
	RoleVirtual
	RoleUniform
	RoleDebug

	roleCount
)

var roleNames = [roleCount]string{
	RoleInput:   "input",
	RoleOutput:  "output",
	RoleVirtual: "virtual",
	RoleUniform: "uniform",
	RoleDebug:   "debug",
}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Roles returns every role in declaration order.
func Roles() []Role {
	return []Role{RoleInput, RoleOutput, RoleVirtual, RoleUniform, RoleDebug}
}

// marker is the payload token prefix of a numbered role, e.g. "input_image[".
func (r Role) marker() string {
	switch r {
	case RoleInput:
		return "input_image["
	case RoleOutput:
		return "output_image["
	case RoleDebug:
		return "debug_image["
	}
	return ""
}

// title is the capitalized role name used in diagnostic messages.
func (r Role) title() string {
	switch r {
	case RoleInput:
		return "Input"
	case RoleOutput:
		return "Output"
	case RoleDebug:
		return "Debug"
	case RoleUniform:
		return "Uniform input"
	}
	return "Virtual"
}
