package types

import "fmt"

// DefineMode says how a define is rendered on a compiler command line.
type DefineMode int

const (
	// DefineValue renders -DNAME=VALUE.
	DefineValue DefineMode = iota
	// DefineSet renders -DNAME.
	DefineSet
	// DefineUnset renders -UNAME.
	DefineUnset
)

// Define is a single preprocessor define.
type Define struct {
	Name  string
	Value string
	Mode  DefineMode
}

// Flag renders the define as a compiler flag.
func (d Define) Flag() string {
	switch d.Mode {
	case DefineSet:
		return "-D" + d.Name
	case DefineUnset:
		return "-U" + d.Name
	default:
		return fmt.Sprintf("-D%s=%s", d.Name, d.Value)
	}
}

// DefineFlags renders a list of defines in order.
func DefineFlags(defines []Define) []string {
	flags := make([]string, 0, len(defines))
	for _, d := range defines {
		flags = append(flags, d.Flag())
	}
	return flags
}
