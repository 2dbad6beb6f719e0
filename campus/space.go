package campus

import "strings"

const (
	labelAboveMarker = "!"
	commentsDisabled = "^"
)

// DisplayName returns the space name without its marker flags.
func (s Space) DisplayName() string {
	name := strings.TrimPrefix(s.Name, labelAboveMarker)
	return strings.TrimSuffix(name, commentsDisabled)
}

// LabelAbove reports whether the marker label is drawn above the marker.
func (s Space) LabelAbove() bool {
	return strings.HasPrefix(s.Name, labelAboveMarker)
}

func (s Space) CommentsDisabled() bool {
	return strings.HasSuffix(s.Name, commentsDisabled)
}

// Clone returns a copy that shares no maps with s.
func (s Space) Clone() Space {
	c := s
	if s.Coordinates != nil {
		c.Coordinates = make(map[int]Point, len(s.Coordinates))
		for level, p := range s.Coordinates {
			c.Coordinates[level] = p
		}
	}
	return c
}
