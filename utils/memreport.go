package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// MemReport is a hierarchical size report for a persistent structure. The
// children are listed in the order their fields are serialized.
type MemReport struct {
	Name       string      `json:"name"`
	TotalBytes int         `json:"total_bytes"`
	Children   []MemReport `json:"children,omitempty"`
}

// NewMemReport sums the children into the parent total.
func NewMemReport(name string, children ...MemReport) MemReport {
	total := 0
	for _, c := range children {
		total += c.TotalBytes
	}
	return MemReport{Name: name, TotalBytes: total, Children: children}
}

// Leaf returns a report without children.
func Leaf(name string, bytes int) MemReport {
	return MemReport{Name: name, TotalBytes: bytes}
}

// Find returns the first descendant (or the report itself) with the given name.
func (r MemReport) Find(name string) (MemReport, bool) {
	if r.Name == name {
		return r, true
	}
	for _, child := range r.Children {
		if found, ok := child.Find(name); ok {
			return found, true
		}
	}
	return MemReport{}, false
}

// JSON returns a JSON string representation of the MemReport.
func (r MemReport) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"error": "%s"}`, err.Error())
	}
	return string(b)
}

// String returns a string representation of the MemReport as a tree.
func (r MemReport) String() string {
	var sb strings.Builder
	r.buildString(&sb, 0, false)
	return sb.String()
}

// Human is String with humanized sizes.
func (r MemReport) Human() string {
	var sb strings.Builder
	r.buildString(&sb, 0, true)
	return sb.String()
}

func (r MemReport) buildString(sb *strings.Builder, indent int, human bool) {
	prefix := strings.Repeat("  ", indent)
	if human {
		sb.WriteString(fmt.Sprintf("%s- %s: %s\n", prefix, r.Name, humanize.IBytes(uint64(r.TotalBytes))))
	} else {
		sb.WriteString(fmt.Sprintf("%s- %s: %d bytes\n", prefix, r.Name, r.TotalBytes))
	}
	for _, child := range r.Children {
		child.buildString(sb, indent+1, human)
	}
}
