package recursivemake

import (
	"fmt"
	"strings"
)

const header = "# THIS FILE WAS AUTOMATICALLY GENERATED. DO NOT EDIT.\n\n"

// makeFile accumulates the lines of one backend.mk.
type makeFile struct {
	path  string
	lines []string
	once  map[string]bool
}

func newMakeFile(path, depth string) *makeFile {
	mf := &makeFile{path: path, once: make(map[string]bool)}
	mf.assign("DEPTH", depth)
	return mf
}

func (mf *makeFile) write(format string, args ...interface{}) {
	mf.lines = append(mf.lines, fmt.Sprintf(format, args...))
}

// writeOnce drops a line already written.
func (mf *makeFile) writeOnce(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if mf.once[line] {
		return
	}
	mf.once[line] = true
	mf.lines = append(mf.lines, line)
}

func (mf *makeFile) assign(name, value string) {
	mf.write("%s := %s", name, value)
}

// appendEach writes one "+=" line per value.
func (mf *makeFile) appendEach(name string, values []string) {
	for _, v := range values {
		mf.write("%s += %s", name, v)
	}
}

func (mf *makeFile) String() string {
	var b strings.Builder
	b.WriteString(header)
	for _, line := range mf.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
