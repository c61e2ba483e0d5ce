package board

// ClassicShortcuts are the ladders of the standard 10x10 board.
func ClassicShortcuts() []Transition {
	return []Transition{
		{From: 1, To: 38},
		{From: 4, To: 14},
		{From: 9, To: 31},
		{From: 21, To: 42},
		{From: 28, To: 84},
		{From: 36, To: 44},
		{From: 51, To: 67},
		{From: 71, To: 91},
		{From: 80, To: 100},
	}
}

// ClassicSetbacks are the snakes of the standard 10x10 board.
func ClassicSetbacks() []Transition {
	return []Transition{
		{From: 16, To: 6},
		{From: 47, To: 26},
		{From: 49, To: 11},
		{From: 56, To: 53},
		{From: 62, To: 19},
		{From: 64, To: 60},
		{From: 87, To: 24},
		{From: 93, To: 73},
		{From: 95, To: 75},
		{From: 98, To: 78},
	}
}

// Classic returns the validated standard board table.
func Classic() *Table {
	return MustTable(ClassicSize, ClassicShortcuts(), ClassicSetbacks())
}
