// Package prompt implements the duplicate-resolution strategy handlers call
// when they see a second definition for the same key.
package prompt

// Decision is what a Prompter returns when asked to resolve a duplicate
// definition: which value to keep, and whether to surface a warning.
type Decision int

const (
	UseOlder Decision = iota
	UseNewer
	WarnAndUseOlder
	WarnAndUseNewer
)

func (d Decision) KeepsOlder() bool {
	return d == UseOlder || d == WarnAndUseOlder
}

func (d Decision) ShouldWarn() bool {
	return d == WarnAndUseOlder || d == WarnAndUseNewer
}

// Prompter decides how to resolve a duplicate definition for key, given the
// older and newer raw values (as opaque strings; the caller knows how to
// interpret them for its own domain).
type Prompter interface {
	Resolve(key, older, newer string) Decision
}

type fixed Decision

func (f fixed) Resolve(string, string, string) Decision { return Decision(f) }

// AlwaysOlder keeps the first definition seen, silently.
func AlwaysOlder() Prompter { return fixed(UseOlder) }

// AlwaysNewer keeps the most recent definition seen, silently.
func AlwaysNewer() Prompter { return fixed(UseNewer) }

// AlwaysWarn keeps the older definition but always surfaces a warning; the
// processor uses it as the default for every duplicate key, minor commands
// like #SWBGA and #ARGB included.
func AlwaysWarn() Prompter { return fixed(WarnAndUseOlder) }

// PanicOnWarn is for tests: any duplicate that would warn instead panics,
// so a test asserting "no duplicates expected" fails loudly rather than
// silently keeping a value.
type PanicOnWarn struct{ Fallback Prompter }

func (p PanicOnWarn) Resolve(key, older, newer string) Decision {
	d := p.Fallback.Resolve(key, older, newer)
	if d.ShouldWarn() {
		panic("prompt: unexpected duplicate definition for " + key)
	}
	return d
}
