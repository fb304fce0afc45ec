package store

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Path is the sequence of keys leading from the root to a node.
type Path []any

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, k := range p {
		sb.WriteByte('/')
		fmt.Fprint(&sb, k)
	}
	return sb.String()
}

var rootHash = xxhash.Sum64String("statetree/root")

// childHash folds key into the parent's fingerprint so every node carries
// an O(1) summary of its path.
func childHash(parent uint64, key any) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], parent)

	d := xxhash.New()
	d.Write(buf[:])
	switch k := key.(type) {
	case string:
		d.WriteString("s")
		d.WriteString(k)
	case int:
		d.WriteString("i")
		d.WriteString(strconv.Itoa(k))
	default:
		d.WriteString(fmt.Sprintf("%T:%v", key, key))
	}
	return d.Sum64()
}
