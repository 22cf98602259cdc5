//go:build integration

package testutils

import (
	"time"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator produces queue requests with readable labels.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator seeds the faker; without a seed the clock is used.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s))}
}

// Label returns a song-like title.
func (g *TestDataGenerator) Label() string {
	return g.faker.SongName() + " - " + g.faker.SongArtist()
}

// Requests returns n single-copy requests, none fast tracked.
func (g *TestDataGenerator) Requests(n int) []queuedomain.Request {
	out := make([]queuedomain.Request, n)
	for i := range out {
		out[i] = queuedomain.Request{Label: g.Label()}
	}
	return out
}

// Username returns a lowercase name that passes account validation.
func (g *TestDataGenerator) Username() string {
	return g.faker.Regex("[a-z]{6,12}")
}
