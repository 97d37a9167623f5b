package shape

import (
	"fmt"
	"strings"

	"github.com/san-kum/handcloud/internal/dynamo"
)

// Template identifies the procedural rule particles settle toward.
type Template int

const (
	Sphere Template = iota
	Heart
	Saturn
	Fireworks
)

var names = [...]string{"sphere", "heart", "saturn", "fireworks"}

// All returns the templates in cycle order.
func All() []Template {
	return []Template{Sphere, Heart, Saturn, Fireworks}
}

func (t Template) String() string {
	if t < 0 || int(t) >= len(names) {
		return fmt.Sprintf("template(%d)", int(t))
	}
	return names[t]
}

// Label is the upper-case form shown in mode banners.
func (t Template) Label() string {
	return strings.ToUpper(t.String())
}

// Next returns the following template in the cycle sphere, heart, saturn, fireworks.
// Values outside the set restart the cycle after sphere.
func (t Template) Next() Template {
	if t < 0 || int(t) >= len(names) {
		return Heart
	}
	return (t + 1) % Template(len(names))
}

// Parse resolves a template name, case-insensitively.
func Parse(name string) (Template, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range names {
		if candidate == n {
			return Template(i), nil
		}
	}
	return Sphere, fmt.Errorf("%w: %q", dynamo.ErrUnknownTemplate, name)
}

func (t Template) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Template) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
