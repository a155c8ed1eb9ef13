package order

import (
	"math/rand"
	"time"
)

// lottery draws count distinct numbers from 1..max using a Fisher-Yates
// shuffle truncated to count.
type lottery struct {
	rng *rand.Rand
}

func newLottery() *lottery {
	return &lottery{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func newLotteryWithSeed(seed int64) *lottery {
	return &lottery{rng: rand.New(rand.NewSource(seed))}
}

func (l *lottery) Draw(max, count int) []int {
	numbers := make([]int, max)
	for i := range numbers {
		numbers[i] = i + 1
	}
	l.rng.Shuffle(len(numbers), func(i, j int) {
		numbers[i], numbers[j] = numbers[j], numbers[i]
	})
	return numbers[:count]
}
