package document

import (
	"math/rand/v2"
	"strconv"
)

// idSpan is the range of the numeric part of a generated identifier.
const idSpan = 1000

// idGenerator draws identifiers as prefix plus a small random number. Values
// already used in the document are redrawn; after repeated collisions the
// range widens tenfold. This is best effort, not a uniqueness guarantee.
type idGenerator struct {
	rnd  *rand.Rand
	used map[string]bool
}

func newIDGenerator(r *rand.Rand) *idGenerator {
	return &idGenerator{rnd: r, used: make(map[string]bool)}
}

func (g *idGenerator) next(prefix string) string {
	span := idSpan
	for attempt := 1; ; attempt++ {
		v := prefix + strconv.Itoa(g.rnd.IntN(span))
		if !g.used[v] {
			g.used[v] = true
			return v
		}
		if attempt%32 == 0 {
			span *= 10
		}
	}
}

// reserve marks every identifier value already present under n as used.
func (g *idGenerator) reserve(n *Node) {
	walkAll(n, func(c *Node) {
		if IsIdentifierField(c.Name) {
			if v := c.Text(); v != "" {
				g.used[v] = true
			}
		}
	})
}

func (g *idGenerator) fork() *idGenerator {
	c := newIDGenerator(rand.New(rand.NewPCG(g.rnd.Uint64(), g.rnd.Uint64())))
	for v := range g.used {
		c.used[v] = true
	}
	return c
}
