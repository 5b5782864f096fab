package domain

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// MyLifeOrganized export element names.
const (
	mloTaskTree   = "TaskTree"
	mloTaskNode   = "TaskNode"
	mloCaption    = "Caption"
	mloNote       = "Note"
	mloCompletion = "CompletionDateTime"
	mloDropped    = "Dropped"
	mloDue        = "DueDateTime"
	mloStart      = "StartDateTime"
	mloImportance = "Importance"
	mloUrgency    = "Urgency"
	mloMaxRating  = 200 // MLO ratings run 0..200 with 100 as normal
)

// MLONode is a generic element of a MyLifeOrganized XML export. Unknown
// elements and attributes are kept so a compacted file can be written back.
type MLONode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []MLONode  `xml:",any"`
}

// ParseMLO reads an export.
func ParseMLO(r io.Reader) (*MLONode, error) {
	var root MLONode
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: parse MLO export: %w", ErrValidation, err)
	}
	return &root, nil
}

// WriteMLO writes root back as XML with a declaration.
func WriteMLO(w io.Writer, root *MLONode) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

// Child returns the first direct child named name, or nil.
func (n *MLONode) Child(name string) *MLONode {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

// ChildText returns the trimmed text of the first child named name.
func (n *MLONode) ChildText(name string) string {
	if c := n.Child(name); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// Attr returns the value of attribute name.
func (n *MLONode) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// TaskTree returns the TaskTree element, which is either the root or a
// direct child of it.
func (n *MLONode) TaskTree() (*MLONode, error) {
	if n.XMLName.Local == mloTaskTree {
		return n, nil
	}
	if t := n.Child(mloTaskTree); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("%w: no %s element in MLO export", ErrValidation, mloTaskTree)
}

// IsClosed reports whether a task node is completed or dropped.
func (n *MLONode) IsClosed() bool {
	if n.ChildText(mloCompletion) != "" {
		return true
	}
	if strings.EqualFold(n.ChildText(mloDropped), "true") {
		return true
	}
	return n.Attr(mloDropped) == "true"
}

// Compact removes closed task nodes together with their subtrees and
// returns the number of nodes removed, subtrees included.
func (n *MLONode) Compact() int {
	removed := 0
	kept := n.Nodes[:0]
	for _, c := range n.Nodes {
		if c.XMLName.Local == mloTaskNode && c.IsClosed() {
			removed += 1 + c.countTasks()
			continue
		}
		removed += c.Compact()
		kept = append(kept, c)
	}
	n.Nodes = kept
	return removed
}

func (n *MLONode) countTasks() int {
	count := 0
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == mloTaskNode {
			count += 1 + n.Nodes[i].countTasks()
		}
	}
	return count
}

func (n *MLONode) taskChildren() []*MLONode {
	var out []*MLONode
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == mloTaskNode {
			out = append(out, &n.Nodes[i])
		}
	}
	return out
}

// MLOTask is one task node flattened for import.
type MLOTask struct {
	Patch  ItemPatch
	Parent int // index of the parent task, -1 for top-level nodes
}

// Flatten lists the task nodes under tree in pre-order, so a parent always
// precedes its children. Nodes with children become projects, leaves
// become tasks. Every task is imported as a next action.
func (n *MLONode) Flatten() []MLOTask {
	var out []MLOTask
	var walk func(node *MLONode, parent int)
	walk = func(node *MLONode, parent int) {
		for _, c := range node.taskChildren() {
			idx := len(out)
			out = append(out, MLOTask{Patch: c.patch(), Parent: parent})
			walk(c, idx)
		}
	}
	walk(n, -1)
	return out
}

func (n *MLONode) patch() ItemPatch {
	title := n.ChildText(mloCaption)
	if title == "" {
		title = "(untitled)"
	}
	typ := TypeTask
	if len(n.taskChildren()) > 0 {
		typ = TypeProject
	}
	p := ItemPatch{
		Title:  Ptr(title),
		Type:   Ptr(typ),
		Status: Ptr(StatusNext),
	}
	if note := n.ChildText(mloNote); note != "" {
		p.Notes = Ptr(note)
	}
	if d, err := ParseDate(n.ChildText(mloDue)); err == nil && !d.IsZero() {
		p.DueDate = Ptr(d)
	}
	if d, err := ParseDate(n.ChildText(mloStart)); err == nil && !d.IsZero() {
		p.ScheduledDate = Ptr(d)
	}
	if v, ok := mloRating(n.ChildText(mloImportance)); ok {
		p.Importance = Ptr(v)
	}
	if v, ok := mloRating(n.ChildText(mloUrgency)); ok {
		p.Urgency = Ptr(v)
	}
	return p
}

// mloRating maps an MLO 0..200 rating linearly onto 1..5.
func mloRating(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	v = math.Min(math.Max(v, 0), mloMaxRating)
	return MinRating + int(math.Round(v*float64(MaxRating-MinRating)/mloMaxRating)), true
}
