package persist

import (
	"gopkg.in/yaml.v3"
)

type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

type yamlCodec[T any] struct{}

// YAMLCodec stores values as YAML documents, which keeps them readable in
// the inspect tool.
func YAMLCodec[T any]() Codec[T] {
	return yamlCodec[T]{}
}

func (yamlCodec[T]) Encode(v T) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec[T]) Decode(data []byte) (T, error) {
	var v T
	err := yaml.Unmarshal(data, &v)
	return v, err
}
