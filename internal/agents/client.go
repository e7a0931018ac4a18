package agents

import (
	"sync"

	"github.com/jonathan/outreach-crm/internal/llm"
)

// lazyClient defers client construction to the first run so a missing API
// key surfaces as a ConfigurationError on pipeline operations while the rest
// of the server keeps working.
type lazyClient struct {
	cfg  llm.Config
	once sync.Once
	c    *llm.Client
	err  error
}

func (l *lazyClient) get() (*llm.Client, error) {
	l.once.Do(func() {
		l.c, l.err = llm.New(l.cfg)
	})
	return l.c, l.err
}
