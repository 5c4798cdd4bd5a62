package layer

import "sort"
import "sync"

import "github.com/pkg/errors"

import "github.com/neurlang/recognizer/vocab"

// EncoderConfig sizes a backbone.
type EncoderConfig struct {
	Height     int
	Width      int
	Channels   int
	PatchWidth int // columns per location
	Units      int // feature width D
	Hidden     int // initial state width, for backbones which produce one
}

// Backbone constructs an encoder architecture from its configuration.
type Backbone func(EncoderConfig) (EncoderSpec, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Backbone)
)

// Register makes a backbone available by name. Registering a name twice panics.
func Register(name string, b Backbone) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("layer: backbone " + name + " registered twice")
	}
	registry[name] = b
}

// Lookup builds the named backbone. Unknown names are configuration errors.
func Lookup(name string, cfg EncoderConfig) (EncoderSpec, error) {
	registryMu.RLock()
	b, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(vocab.ErrConfiguration, "unknown backbone %q (have %v)", name, Backbones())
	}
	return b(cfg)
}

// Backbones lists the registered names in order.
func Backbones() (o []string) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for name := range registry {
		o = append(o, name)
	}
	sort.Strings(o)
	return
}
