package protocol

import (
	"strconv"
	"strings"
)

const (
	remoteSizeField   = "remote annex size:"
	presentField      = "present:"
	repositoriesField = "repositories containing these files:"
)

// InfoFramer frames responses of the human readable info batch protocol.
//
// git-annex prints a different set of fields for each kind of target, so a
// response is complete once the field printed last for that kind arrives:
//   - a remote ("here", a remote name or uuid) ends with "remote annex size";
//   - an annexed file ends with "present";
//   - a directory or treeish ends with "repositories containing these
//     files: N" followed by one line per repository.
//
// Targets git-annex cannot resolve produce no stdout at all; use InfoJSON
// when requests may name unknown targets.
type InfoFramer struct{}

// Complete implements subprocess.Framer.
func (InfoFramer) Complete(lines []string) bool {
	if len(lines) == 0 {
		return false
	}

	last := lines[len(lines)-1]
	if strings.HasPrefix(last, remoteSizeField) || strings.HasPrefix(last, presentField) {
		return true
	}

	for i := len(lines) - 1; i >= 0; i-- {
		n, ok := repositoryCount(lines[i])
		if ok {
			return len(lines)-1-i >= n
		}
	}

	return false
}

// repositoryCount parses "repositories containing these files: N".
func repositoryCount(line string) (int, bool) {
	rest, ok := strings.CutPrefix(line, repositoriesField)
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}

	return n, true
}

// Field is one named value of an info response.
type Field struct {
	Name  string
	Value string
}

// ParseInfoFields splits "name: value" lines in order.
//
// A header line such as "numcopies stats:" yields an empty value. Indented
// lines belong to the preceding header and are returned with an empty name
// and the trimmed line as value.
func ParseInfoFields(lines []string) []Field {
	fields := make([]Field, 0, len(lines))

	for _, line := range lines {
		if line == "" {
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			fields = append(fields, Field{Value: strings.TrimSpace(line)})

			continue
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			fields = append(fields, Field{Value: line})

			continue
		}

		fields = append(fields, Field{Name: name, Value: strings.TrimSpace(value)})
	}

	return fields
}

// Lookup returns the value of the first field named name.
func Lookup(fields []Field, name string) (string, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value, true
		}
	}

	return "", false
}
