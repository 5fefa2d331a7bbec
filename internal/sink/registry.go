package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/inputecho/internal/storage"
)

// ErrUnknownSink is returned by Build for names that were never registered.
var ErrUnknownSink = errors.New("sink: unknown sink")

// Env carries what factories may need. Unused fields can be left zero.
type Env struct {
	Out       io.Writer
	Logger    *log.Logger
	Store     *storage.Store
	SessionID string
}

// Factory builds a sink from the environment.
type Factory func(env Env) (Sink, error)

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

func init() {
	Register("console", func(env Env) (Sink, error) {
		out := env.Out
		if out == nil {
			out = os.Stdout
		}
		return NewConsole(out), nil
	})
	Register("log", func(env Env) (Sink, error) {
		if env.Logger == nil {
			return nil, errors.New("sink: log sink needs a logger")
		}
		return NewLog(env.Logger), nil
	})
	Register("store", func(env Env) (Sink, error) {
		if env.Store == nil {
			return nil, errors.New("sink: store sink needs an open database (is storage disabled?)")
		}
		if env.SessionID == "" {
			return nil, errors.New("sink: store sink needs a session id")
		}
		return NewDatabase(env.Store, env.SessionID), nil
	})
}

// Register adds a sink factory under name.
// Panics if the name is already registered.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("sink: %q already registered", name))
	}
	factories[name] = f
}

// Names returns the registered sink names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return namesLocked()
}

// Exists checks if a sink with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}

// Build creates the named sinks. A single name returns that sink directly,
// several are wrapped in a Multi. Duplicate names are built once.
func Build(names []string, env Env) (Sink, error) {
	mu.RLock()
	defer mu.RUnlock()

	var sinks Multi
	seen := make(map[string]bool)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		f, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownSink, name, strings.Join(namesLocked(), ", "))
		}
		s, err := f(env)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}

	switch len(sinks) {
	case 0:
		return Discard, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

func namesLocked() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
