// Package keyword classifies API function names by the substrings their
// names tend to carry: allocator-like, deallocator-like, "other" stateful
// verbs, and variable-argument forms. The analyzers and checkers in infer
// and detect both consult this one table so the two stay in lockstep.
package keyword

import "strings"

// VarArg names are handled only via a retval check; their argument lists
// cannot be reasoned about positionally.
var VarArg = []string{"print", "execl"}

var Other = []string{"fetch", "insert", "push", "pop", "read", "write", "encode", "decode"}

var Pre = []string{"alloc", "new", "clone", "create", "dup", "init", "open", "_lock"}

var Post = []string{"free", "release", "clear", "destroy", "clean", "close", "_unlock"}

// PreSequence and Subsequent extend Pre/Post with the "other" verbs, used
// wherever a name just needs to be recognized as part of an ordered pair
// rather than specifically an allocator or deallocator.
var PreSequence = append(append([]string{}, Pre...), Other...)

var Subsequent = append(append([]string{}, Post...), Other...)

func hasKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsVariadic reports whether name begins with a known variable-argument
// prefix (case-insensitive, prefix match only — not substring).
func IsVariadic(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range VarArg {
		if len(lower) >= len(kw) && lower[:len(kw)] == kw {
			return true
		}
	}
	return false
}

func IsPre(name string) bool        { return hasKeyword(name, Pre) }
func IsPreSequence(name string) bool { return hasKeyword(name, PreSequence) }
func IsPost(name string) bool       { return hasKeyword(name, Post) }
func IsSubsequent(name string) bool { return hasKeyword(name, Subsequent) }
