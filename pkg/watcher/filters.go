package watcher

import (
	"fmt"
	"strings"
)

// NotifyFilters selects which kinds of change are significant.
type NotifyFilters uint16

const (
	Attributes NotifyFilters = 1 << iota
	CreationTime
	DirectoryName
	FileName
	LastAccess
	LastWrite
	Security
	Size

	AllNotifyFilters = Attributes | CreationTime | DirectoryName | FileName |
		LastAccess | LastWrite | Security | Size
)

var notifyFilterNames = []struct {
	flag NotifyFilters
	name string
}{
	{Attributes, "Attributes"},
	{CreationTime, "CreationTime"},
	{DirectoryName, "DirectoryName"},
	{FileName, "FileName"},
	{LastAccess, "LastAccess"},
	{LastWrite, "LastWrite"},
	{Security, "Security"},
	{Size, "Size"},
}

// Has reports whether every flag of other is set in f.
func (f NotifyFilters) Has(other NotifyFilters) bool {
	return other != 0 && f&other == other
}

func (f NotifyFilters) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	for _, n := range notifyFilterNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if rest := f &^ AllNotifyFilters; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint16(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseNotifyFilters parses a list of flag names separated by '|', ',' or ';'.
// Names are case-insensitive; "All" selects every flag.
func ParseNotifyFilters(s string) (NotifyFilters, error) {
	var f NotifyFilters
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ';' || r == ' '
	})
	for _, field := range fields {
		if strings.EqualFold(field, "all") {
			f |= AllNotifyFilters
			continue
		}
		found := false
		for _, n := range notifyFilterNames {
			if strings.EqualFold(field, n.name) {
				f |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown notify filter %q", ErrInvalidConfiguration, field)
		}
	}
	return f, nil
}

// significant reports whether a and b differ in any attribute selected by f.
func (f NotifyFilters) significant(a, b FileEntry) bool {
	if f.Has(LastWrite) && !a.Modified.Equal(b.Modified) {
		return true
	}
	if f.Has(Size) && a.Size != b.Size {
		return true
	}
	if f.Has(CreationTime) && !a.Created.Equal(b.Created) {
		return true
	}
	if f.Has(LastAccess) && !a.Accessed.Equal(b.Accessed) {
		return true
	}
	if f.Has(Attributes) && a.Attributes != b.Attributes {
		return true
	}
	if f.Has(Security) && (a.Mode.Perm() != b.Mode.Perm() || a.UID != b.UID || a.GID != b.GID) {
		return true
	}
	return false
}
