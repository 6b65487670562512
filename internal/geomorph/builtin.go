package geomorph

import "github.com/mossgate/delver-engine/internal/geometry"

// BuiltIn returns the stock geomorph set. Connection points sit on the
// perimeter of each mask, one cell per facing wall.
func BuiltIn() []*Template {
	return []*Template{
		{
			ID:     "entrance-hall",
			Shape:  "rectangle",
			Type:   TypeEntrance,
			Size:   SizeMedium,
			Width:  6,
			Height: 4,
			GridPattern: mustPattern(
				"######",
				"######",
				"######",
				"######",
			),
			ConnectionPoints: []TemplatePoint{
				{Direction: geometry.North, Position: geometry.Position{X: 3, Y: 0}},
				{Direction: geometry.South, Position: geometry.Position{X: 2, Y: 3}},
				{Direction: geometry.East, Position: geometry.Position{X: 5, Y: 1}},
				{Direction: geometry.West, Position: geometry.Position{X: 0, Y: 2}},
			},
		},
		{
			ID:     "chamber-square",
			Shape:  "rectangle",
			Type:   TypeChamber,
			Size:   SizeMedium,
			Width:  5,
			Height: 5,
			GridPattern: mustPattern(
				"#####",
				"#####",
				"#####",
				"#####",
				"#####",
			),
			ConnectionPoints: []TemplatePoint{
				{Direction: geometry.North, Position: geometry.Position{X: 2, Y: 0}},
				{Direction: geometry.South, Position: geometry.Position{X: 2, Y: 4}},
				{Direction: geometry.East, Position: geometry.Position{X: 4, Y: 2}},
				{Direction: geometry.West, Position: geometry.Position{X: 0, Y: 2}},
			},
		},
		{
			ID:     "chamber-small",
			Shape:  "rectangle",
			Type:   TypeChamber,
			Size:   SizeSmall,
			Width:  3,
			Height: 3,
			GridPattern: mustPattern(
				"###",
				"###",
				"###",
			),
			ConnectionPoints: []TemplatePoint{
				{Direction: geometry.North, Position: geometry.Position{X: 1, Y: 0}},
				{Direction: geometry.South, Position: geometry.Position{X: 1, Y: 2}},
				{Direction: geometry.East, Position: geometry.Position{X: 2, Y: 1}},
				{Direction: geometry.West, Position: geometry.Position{X: 0, Y: 1}},
			},
		},
		{
			ID:     "chamber-long",
			Shape:  "rectangle",
			Type:   TypeChamber,
			Size:   SizeMedium,
			Width:  7,
			Height: 4,
			GridPattern: mustPattern(
				"#######",
				"#######",
				"#######",
				"#######",
			),
			ConnectionPoints: []TemplatePoint{
				{Direction: geometry.North, Position: geometry.Position{X: 3, Y: 0}},
				{Direction: geometry.South, Position: geometry.Position{X: 3, Y: 3}},
				{Direction: geometry.East, Position: geometry.Position{X: 6, Y: 1}},
				{Direction: geometry.West, Position: geometry.Position{X: 0, Y: 2}},
			},
		},
		{
			ID:     "chamber-l",
			Shape:  "l-shape",
			Type:   TypeChamber,
			Size:   SizeMedium,
			Width:  5,
			Height: 5,
			GridPattern: mustPattern(
				"###..",
				"###..",
				"#####",
				"#####",
				"#####",
			),
			ConnectionPoints: []TemplatePoint{
				{Direction: geometry.North, Position: geometry.Position{X: 1, Y: 0}},
				{Direction: geometry.South, Position: geometry.Position{X: 2, Y: 4}},
				{Direction: geometry.East, Position: geometry.Position{X: 4, Y: 3}},
				{Direction: geometry.West, Position: geometry.Position{X: 0, Y: 1}},
			},
		},
		{
			ID:     "chamber-t",
			Shape:  "t-shape",
			Type:   TypeChamber,
			Size:   SizeMedium,
			Width:  7,
			Height: 5,
			GridPattern: mustPattern(
				"#######",
				"#######",
				"..###..",
				"..###..",
				"..###..",
			),
			ConnectionPoints: []TemplatePoint{
				{Direction: geometry.North, Position: geometry.Position{X: 3, Y: 0}},
				{Direction: geometry.South, Position: geometry.Position{X: 3, Y: 4}},
				{Direction: geometry.East, Position: geometry.Position{X: 6, Y: 1}},
				{Direction: geometry.West, Position: geometry.Position{X: 0, Y: 1}},
			},
		},
		{
			ID:     "chamber-cross",
			Shape:  "cross",
			Type:   TypeChamber,
			Size:   SizeMedium,
			Width:  5,
			Height: 5,
			GridPattern: mustPattern(
				".###.",
				".###.",
				"#####",
				".###.",
				".###.",
			),
			ConnectionPoints: []TemplatePoint{
				{Direction: geometry.North, Position: geometry.Position{X: 2, Y: 0}},
				{Direction: geometry.South, Position: geometry.Position{X: 2, Y: 4}},
				{Direction: geometry.East, Position: geometry.Position{X: 4, Y: 2}},
				{Direction: geometry.West, Position: geometry.Position{X: 0, Y: 2}},
			},
		},
		{
			ID:     "hall-grand",
			Shape:  "rectangle",
			Type:   TypeHall,
			Size:   SizeLarge,
			Width:  8,
			Height: 6,
			GridPattern: mustPattern(
				"########",
				"########",
				"########",
				"########",
				"########",
				"########",
			),
			ConnectionPoints: []TemplatePoint{
				{Direction: geometry.North, Position: geometry.Position{X: 4, Y: 0}},
				{Direction: geometry.South, Position: geometry.Position{X: 3, Y: 5}},
				{Direction: geometry.East, Position: geometry.Position{X: 7, Y: 2}},
				{Direction: geometry.West, Position: geometry.Position{X: 0, Y: 3}},
			},
		},
	}
}
