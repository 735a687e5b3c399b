// Package locator generates PNR-style booking references.
package locator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Domenick1991/airfare/internal/domain"
)

const (
	Prefix = "PNR"

	bodyLength         = 8
	alphabet           = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultMaxAttempts = 10
)

// Source yields ints uniformly distributed in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// ExistsFunc reports whether a locator is already taken.
type ExistsFunc func(ctx context.Context, locator string) (bool, error)

type Generator struct {
	src         Source
	maxAttempts int
}

type Option func(*Generator)

func WithSource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.src = src
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{src: globalSource{}, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next draws candidates until exists reports a free one. After maxAttempts
// collisions it gives up with domain.ErrLocatorSpaceExhausted.
func (g *Generator) Next(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate := g.candidate()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check locator %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%d attempts: %w", g.maxAttempts, domain.ErrLocatorSpaceExhausted)
}

func (g *Generator) candidate() string {
	var b strings.Builder
	b.Grow(len(Prefix) + bodyLength)
	b.WriteString(Prefix)
	for i := 0; i < bodyLength; i++ {
		b.WriteByte(alphabet[g.src.IntN(len(alphabet))])
	}
	return b.String()
}

// Valid reports whether s has the locator shape.
func Valid(s string) bool {
	if len(s) != len(Prefix)+bodyLength || !strings.HasPrefix(s, Prefix) {
		return false
	}
	for _, c := range s[len(Prefix):] {
		if !strings.ContainsRune(alphabet, c) {
			return false
		}
	}
	return true
}
