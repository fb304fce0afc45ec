// Package persist mirrors a slice of a store into a key/value Storage.
//
// A Binding restores the slice once when it is attached, migrating older
// documents forward, and from then on writes every value its subscription
// receives.
package persist

import (
	"errors"
	"fmt"

	"github.com/delaneyj/statetree/store"
	"go.uber.org/zap"
)

var (
	ErrClosed       = errors.New("storage closed")
	ErrNoPath       = errors.New("path is required for a persistent database")
	ErrNewerVersion = errors.New("stored version is newer than supported")
	ErrNoUpgrade    = errors.New("stored version is older but no upgrade is set")
)

type Option[T any] func(*config[T])

type config[T any] struct {
	codec     Codec[T]
	versionOf func(T) int
	current   int
	upgrade   func(v T, from int) (T, error)
	log       *zap.Logger
}

// WithCodec replaces the default YAML codec.
func WithCodec[T any](c Codec[T]) Option[T] {
	return func(cfg *config[T]) {
		cfg.codec = c
	}
}

// WithVersion tells a binding how to read the version of a stored value
// and which version the running code writes.
func WithVersion[T any](versionOf func(v T) int, current int) Option[T] {
	return func(cfg *config[T]) {
		cfg.versionOf = versionOf
		cfg.current = current
	}
}

// WithUpgrade migrates a value stored at version from to the current one.
func WithUpgrade[T any](fn func(v T, from int) (T, error)) Option[T] {
	return func(cfg *config[T]) {
		cfg.upgrade = fn
	}
}

func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(cfg *config[T]) {
		if logger != nil {
			cfg.log = logger
		}
	}
}

type Binding struct {
	key string
	sub *store.Subscription
}

func (b *Binding) Key() string {
	return b.key
}

// Close stops saving. Already stored data is left in place.
func (b *Binding) Close() {
	b.sub.Close()
}

// Attach binds c to key in st. A stored value replaces the cursor's value;
// without one the cursor's current value is stored as is. Save failures
// later on are returned from the subscription and so reach the store's
// error handler.
func Attach[T any](c store.Cursor[T], st Storage, key string, opts ...Option[T]) (*Binding, error) {
	cfg := config[T]{
		codec: YAMLCodec[T](),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.log.With(zap.String("key", key))

	data, ok, err := st.Get(key)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", key, err)
	}
	if ok {
		v, upgraded, err := restore(&cfg, data)
		if err != nil {
			return nil, fmt.Errorf("restore %s: %w", key, err)
		}
		if err := c.Write(v); err != nil {
			return nil, fmt.Errorf("restore %s: %w", key, err)
		}
		if upgraded {
			if err := save(&cfg, st, key, v); err != nil {
				return nil, err
			}
		}
		log.Debug("state restored", zap.Bool("upgraded", upgraded))
	} else {
		if err := save(&cfg, st, key, c.Read()); err != nil {
			return nil, err
		}
		log.Debug("state seeded")
	}

	initial := true
	sub := c.Subscribe(func(v T) error {
		// the value was just restored or seeded
		if initial {
			initial = false
			return nil
		}
		return save(&cfg, st, key, v)
	})
	return &Binding{key: key, sub: sub}, nil
}

func restore[T any](cfg *config[T], data []byte) (v T, upgraded bool, err error) {
	v, err = cfg.codec.Decode(data)
	if err != nil {
		return v, false, fmt.Errorf("decode: %w", err)
	}
	if cfg.versionOf == nil {
		return v, false, nil
	}

	from := cfg.versionOf(v)
	switch {
	case from == cfg.current:
		return v, false, nil
	case from > cfg.current:
		return v, false, fmt.Errorf("%w: %d > %d", ErrNewerVersion, from, cfg.current)
	case cfg.upgrade == nil:
		return v, false, fmt.Errorf("%w: %d < %d", ErrNoUpgrade, from, cfg.current)
	}

	v, err = cfg.upgrade(v, from)
	if err != nil {
		return v, false, fmt.Errorf("upgrade from version %d: %w", from, err)
	}
	cfg.log.Info("state upgraded", zap.Int("from", from), zap.Int("to", cfg.current))
	return v, true, nil
}

func save[T any](cfg *config[T], st Storage, key string, v T) error {
	data, err := cfg.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("save %s: encode: %w", key, err)
	}
	if err := st.Set(key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
