package booking

import (
	"fmt"
	"strings"

	"github.com/rickchristie/travelkit"
)

const msgMissingPassenger = "Missing required passenger details"

// Passenger holds the traveller details of a booking. Name and Contact are required;
// anything else the caller sends is kept in Extra.
type Passenger struct {
	Name    string         `json:"name" yaml:"name"`
	Contact string         `json:"contact" yaml:"contact"`
	Email   string         `json:"email,omitempty" yaml:"email,omitempty"`
	Extra   map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// PassengerFromMap reads passenger details from loosely typed tool arguments.
func PassengerFromMap(m map[string]any) Passenger {
	p := Passenger{}
	for k, v := range m {
		switch k {
		case "name":
			p.Name = stringValue(v)
		case "contact", "phone":
			if p.Contact == "" {
				p.Contact = stringValue(v)
			}
		case "email":
			p.Email = stringValue(v)
		default:
			if p.Extra == nil {
				p.Extra = map[string]any{}
			}
			p.Extra[k] = v
		}
	}
	return p
}

// Validate fails with ValidationFailure naming the first missing required field.
func (p Passenger) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return travelkit.ValidationError("name", msgMissingPassenger)
	}
	if strings.TrimSpace(p.Contact) == "" {
		return travelkit.ValidationError("contact", msgMissingPassenger)
	}
	return nil
}

// Map returns the passenger as a flat map, the shape it was received in.
func (p Passenger) Map() map[string]any {
	out := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["name"] = p.Name
	out["contact"] = p.Contact
	if p.Email != "" {
		out["email"] = p.Email
	}
	return out
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
