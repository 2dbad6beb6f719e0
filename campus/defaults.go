package campus

// DefaultSpaces is the starter set of campus locations, used to seed an
// empty database and as the offline fallback of the client.
func DefaultSpaces() []Space {
	return []Space{
		{
			ID:          1,
			Name:        "본관",
			Description: "학교 본관 건물",
			Coordinates: map[int]Point{0: {X: 768, Y: -600}, 1: {X: 384, Y: -300}, 2: {X: 192, Y: -150}},
		},
		{
			ID:          2,
			Name:        "도서관",
			Description: "학교 도서관",
			Coordinates: map[int]Point{0: {X: 600, Y: -500}, 1: {X: 300, Y: -250}, 2: {X: 150, Y: -125}},
		},
		{
			ID:          3,
			Name:        "체육관",
			Description: "실내 체육관",
			Coordinates: map[int]Point{0: {X: 900, Y: -700}, 1: {X: 450, Y: -350}, 2: {X: 225, Y: -175}},
		},
	}
}
