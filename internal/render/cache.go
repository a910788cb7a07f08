package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxPools bounds the option sets kept alive. Every terminal resize
// produces a new width, so the set is dropped wholesale when full.
const maxPools = 16

// poolKey holds the options glamour is built from. CodeStyle is applied
// outside glamour and is not part of it.
type poolKey struct {
	style     string
	width     int
	emoji     bool
	newlines  bool
	tableWrap bool
}

func keyOf(opts Options) poolKey {
	return poolKey{
		style:     opts.Style,
		width:     opts.Width,
		emoji:     opts.EnableEmoji,
		newlines:  opts.PreserveNewLines,
		tableWrap: opts.TableWrap,
	}
}

// glamourPools hands out glamour renderers. A glamour.TermRenderer keeps
// state between calls, so one instance is never used by two goroutines.
type glamourPools struct {
	mu    sync.Mutex
	byKey map[poolKey]*sync.Pool
}

var pools = &glamourPools{byKey: make(map[poolKey]*sync.Pool)}

func (p *glamourPools) pool(opts Options) *sync.Pool {
	k := keyOf(opts)

	p.mu.Lock()
	defer p.mu.Unlock()

	if pl, ok := p.byKey[k]; ok {
		return pl
	}
	if len(p.byKey) >= maxPools {
		p.byKey = make(map[poolKey]*sync.Pool)
	}
	pl := &sync.Pool{}
	p.byKey[k] = pl
	return pl
}

// acquire returns a pooled renderer for opts or builds a new one.
func (p *glamourPools) acquire(opts Options) (*glamour.TermRenderer, error) {
	if r, ok := p.pool(opts).Get().(*glamour.TermRenderer); ok {
		return r, nil
	}
	return newGlamour(opts)
}

func (p *glamourPools) release(opts Options, r *glamour.TermRenderer) {
	if r != nil {
		p.pool(opts).Put(r)
	}
}

func (p *glamourPools) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byKey)
}

func (p *glamourPools) reset() {
	p.mu.Lock()
	p.byKey = make(map[poolKey]*sync.Pool)
	p.mu.Unlock()
}

func newGlamour(opts Options) (*glamour.TermRenderer, error) {
	ro := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
	}
	if opts.EnableEmoji {
		ro = append(ro, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ro = append(ro, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ro...)
}
