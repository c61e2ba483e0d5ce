package engine

import "math/rand"

// DieFaces is the number of faces on the die.
const DieFaces = 6

// Dice produces die values in [1, DieFaces].
type Dice interface {
	Roll() int
}

// RandomDice rolls a fair die from a seeded source, so a seed replays a game.
type RandomDice struct {
	rng *rand.Rand
}

// NewRandomDice creates a fair die.
func NewRandomDice(seed int64) *RandomDice {
	return &RandomDice{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a uniform value in [1, 6].
func (d *RandomDice) Roll() int {
	return d.rng.Intn(DieFaces) + 1
}

// Seed restarts the die from a new seed.
func (d *RandomDice) Seed(seed int64) {
	d.rng.Seed(seed)
}

// SequenceDice replays a fixed list of values, cycling when exhausted.
type SequenceDice struct {
	values []int
	next   int
}

// NewSequenceDice creates a die that returns values in order.
func NewSequenceDice(values ...int) *SequenceDice {
	return &SequenceDice{values: values}
}

// Roll returns the next value of the sequence as given.
func (d *SequenceDice) Roll() int {
	if len(d.values) == 0 {
		return 1
	}
	v := d.values[d.next%len(d.values)]
	d.next++
	return v
}

// clampFace maps any die value onto a legal face. The engine applies it to
// every roll, whatever the Dice implementation.
func clampFace(v int) int {
	if v < 1 {
		return 1
	}
	if v > DieFaces {
		return DieFaces
	}
	return v
}
