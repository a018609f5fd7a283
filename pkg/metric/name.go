package metric

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-logfmt/logfmt"
)

type metadata map[string]string

// Name identifies a chart or signal.  By convention the name ends in the charted
// statistic, such as fill_weight_xbar or solder_defects_count.  Optional metadata
// groups related series (production line, machine, shift) so downstream consumers
// can locate the process a signal came from.  Names are marshalled to a string using
// a modified logfmt, e.g. fill_weight_xbar[line=4 machine=m12]
type Name struct {
	name string
	md   metadata
}

// NewName returns a new name with the associated metadata.
func NewName(name string, md map[string]string) Name {
	return Name{name: name, md: md}
}

// NewNameFrom copies an existing name so metadata can be added without mutating the
// original, e.g. to derive per-rule signal names from a chart name.
func NewNameFrom(n Name) Name {
	copied := make(map[string]string, len(n.md))
	for k, v := range n.md {
		copied[k] = v
	}
	return Name{name: n.name, md: copied}
}

// String marshals the name to a string representation, such as
// fill_weight_xbar[line=4 machine=m12]
func (n Name) String() string {
	md, err := marshalMetadata(n.md)
	if err != nil {
		md = []byte{}
	}
	return n.name + string(md)
}

// AddMetadata upserts key/value pairs into the metadata map.
func (n Name) AddMetadata(md map[string]string) {
	for k, v := range md {
		n.md[k] = v
	}
}

// AddAnnotation adds value-less annotations rendered as @annotation.
func (n Name) AddAnnotation(ann ...string) {
	for _, a := range ann {
		n.md[a] = ""
	}
}

// marshalMetadata encodes metadata as a modified logfmt representation: an opening [,
// (key, value) pairs k=v in sorted key order, then annotations prefixed with @ in
// sorted order, closed with a ].  Example: [line=4 machine=m12 @xbar]
func marshalMetadata(m metadata) ([]byte, error) {
	if m == nil {
		return []byte{}, nil
	}
	keys := make([]string, 0, len(m))
	ann := make([]string, 0, len(m))
	for k, v := range m {
		switch v {
		case "":
			ann = append(ann, fmt.Sprintf("@%s", k))
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	sort.Strings(ann)

	var b bytes.Buffer
	b.Write([]byte("["))
	e := logfmt.NewEncoder(&b)
	for _, k := range keys {
		if err := e.EncodeKeyval(k, m[k]); err != nil {
			return nil, fmt.Errorf("failed to encode %s=%s: %v", k, m[k], err)
		}
	}
	if len(keys) > 0 && len(ann) > 0 {
		b.Write([]byte(" "))
	}
	if len(ann) > 0 {
		b.Write([]byte(strings.Join(ann, " ")))
	}
	b.Write([]byte("]"))
	return b.Bytes(), nil
}
