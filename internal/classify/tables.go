package classify

// Tables lists the qualified names the classifier recognizes. Collection
// entries are origin names of generic definitions; ValueTypes are qualified
// names of well-known immutable value carriers.
type Tables struct {
	List       []string `toml:"list_types"`
	Set        []string `toml:"set_types"`
	Dictionary []string `toml:"dictionary_types"`
	ValueTypes []string `toml:"value_types"`
}

// Origins of the Go builtin container shapes as reported by providers.
const (
	BuiltinSlice = "builtin.slice"
	BuiltinMap   = "builtin.map"
)

// DefaultTables returns the built-in recognized names.
func DefaultTables() Tables {
	return Tables{
		List: []string{
			"System.Collections.Generic.List",
			"System.Collections.Generic.IList",
			"System.Collections.Generic.ICollection",
			"System.Collections.Generic.IEnumerable",
			"System.Collections.Generic.Collection",
			"System.Collections.Generic.IReadOnlyList",
			"System.Collections.Generic.IReadOnlyCollection",
			"System.Collections.ObjectModel.Collection",
			"System.Collections.ObjectModel.ObservableCollection",
			BuiltinSlice,
		},
		Set: []string{
			"System.Collections.Generic.HashSet",
			"System.Collections.Generic.SortedSet",
			"System.Collections.Generic.ISet",
			"System.Collections.Generic.IReadOnlySet",
			"github.com/deckarep/golang-set/v2.Set",
			"k8s.io/apimachinery/pkg/util/sets.Set",
		},
		Dictionary: []string{
			"System.Collections.Generic.Dictionary",
			"System.Collections.Generic.IDictionary",
			"System.Collections.Generic.IReadOnlyDictionary",
			"System.Collections.Generic.SortedDictionary",
			"System.Collections.Concurrent.ConcurrentDictionary",
			BuiltinMap,
		},
		ValueTypes: []string{
			"System.DateTime",
			"System.DateTimeOffset",
			"System.DateOnly",
			"System.TimeOnly",
			"System.TimeSpan",
			"System.Guid",
			"System.Uri",
			"System.Version",
			"System.Decimal",
			"time.Time",
			"time.Duration",
			"time.Month",
			"time.Weekday",
			"github.com/google/uuid.UUID",
			"net/netip.Addr",
			"net/netip.AddrPort",
			"net/netip.Prefix",
			"net/url.URL",
			"math/big.Int",
			"math/big.Float",
			"math/big.Rat",
		},
	}
}

// Merge returns the union of t and ext, keeping t's order first.
func (t Tables) Merge(ext Tables) Tables {
	return Tables{
		List:       union(t.List, ext.List),
		Set:        union(t.Set, ext.Set),
		Dictionary: union(t.Dictionary, ext.Dictionary),
		ValueTypes: union(t.ValueTypes, ext.ValueTypes),
	}
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
