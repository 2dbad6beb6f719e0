package mapview

import "github.com/aquilax/campusmap/campus"

// MarkerScale is the marker size factor for a zoom level.
func MarkerScale(level int) float64 {
	switch level {
	case 0:
		return 1.8
	case 1:
		return 1.1
	case 2:
		return 0.9
	}
	return 1.0
}

// MarkerPosition looks up the coordinates of space for level, falling back
// to level 1 and then level 0.
func MarkerPosition(space campus.Space, level int) (campus.Point, bool) {
	for _, l := range []int{level, 1, 0} {
		if p, ok := space.Coordinates[l]; ok {
			return p, true
		}
	}
	return campus.Point{}, false
}

type Marker struct {
	SpaceID    campus.SpaceID
	Label      string
	Position   campus.Point
	Scale      float64
	LabelAbove bool
	Selected   bool
}

// Markers lays out the spaces for level. Spaces without any coordinates
// are skipped.
func Markers(spaces []campus.Space, level int, selected *campus.Space) []Marker {
	scale := MarkerScale(level)
	markers := make([]Marker, 0, len(spaces))
	for _, s := range spaces {
		pos, ok := MarkerPosition(s, level)
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			SpaceID:    s.ID,
			Label:      s.DisplayName(),
			Position:   pos,
			Scale:      scale,
			LabelAbove: s.LabelAbove(),
			Selected:   selected != nil && selected.ID == s.ID,
		})
	}
	return markers
}
