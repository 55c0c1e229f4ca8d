package regindex

import (
	"fmt"
	"strings"

	"github.com/hupe1980/regindex/index"
	"github.com/hupe1980/regindex/index/adapter"
	"github.com/hupe1980/regindex/index/aspect"
	"github.com/hupe1980/regindex/index/multiproperty"
)

// Config entries that select the fast-path indices.
const (
	ConfigAspect  = "*aspect*"
	ConfigAdapter = "*adapter*"
)

// ParseIndexConfig builds the indices described by cfg, in order. Entries
// are separated by ';'. ConfigAspect and ConfigAdapter select the fast-path
// indices; any other entry is a multiproperty spec:
//
//	*aspect*;*adapter*;objectClass;objectClass,cid,!context
//
// Empty entries are skipped.
func ParseIndexConfig(cfg string, opts ...index.Option) ([]index.FilterIndex, error) {
	var out []index.FilterIndex
	for entry := range strings.SplitSeq(cfg, ";") {
		entry = strings.TrimSpace(entry)
		switch entry {
		case "":
			continue
		case ConfigAspect:
			out = append(out, aspect.New(opts...))
		case ConfigAdapter:
			out = append(out, adapter.New(opts...))
		default:
			x, err := multiproperty.New(entry, opts...)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %q: %w", ErrInvalidConfig, entry, err)
			}
			out = append(out, x)
		}
	}
	return out, nil
}
