package landmark

import "github.com/tauraamui/xerror"

// Resolve builds a landmark source for the configured detector type. All
// detector types share the template shaper.
func Resolve(kind, cascadePath string, minSize int) (Source, error) {
	switch kind {
	case "center":
		return NewSource(Center(0.6), Template()), nil
	case "pigo":
		d, err := NewPigoDetector(cascadePath, minSize)
		if err != nil {
			return nil, err
		}
		return NewSource(d, Template()), nil
	case "cascade", "":
		d, err := NewCascadeDetector(cascadePath, minSize)
		if err != nil {
			return nil, err
		}
		return NewSource(d, Template()), nil
	default:
		return nil, xerror.Errorf("unknown face detector type: %s", kind)
	}
}
