package schema

import (
	"sort"

	"github.com/dimitrije/strata-api/internal/models"
)

// FieldNode is a field with its decoded options and, for group fields, its
// ordered children. Group nesting is one level deep: children are always
// leaves.
type FieldNode struct {
	Field    models.Field
	Options  FieldOptions
	Children []FieldNode
}

// ResolveFieldTree builds the ordered field tree of a collection from its
// flat field rows. Children never appear in the top-level set.
func ResolveFieldTree(fields []models.Field) []FieldNode {
	childrenByParent := make(map[int64][]models.Field)
	var topLevel []models.Field
	for _, f := range fields {
		if f.ParentFieldID != nil {
			childrenByParent[*f.ParentFieldID] = append(childrenByParent[*f.ParentFieldID], f)
			continue
		}
		topLevel = append(topLevel, f)
	}

	sort.SliceStable(topLevel, func(i, j int) bool {
		return topLevel[i].Order < topLevel[j].Order
	})

	tree := make([]FieldNode, 0, len(topLevel))
	for _, f := range topLevel {
		node := FieldNode{Field: f, Options: DecodeOptions(f.Options)}
		if f.IsGroup() {
			children := childrenByParent[f.ID]
			sort.SliceStable(children, func(i, j int) bool {
				return children[i].Order < children[j].Order
			})
			for _, c := range children {
				node.Children = append(node.Children, FieldNode{Field: c, Options: DecodeOptions(c.Options)})
			}
		}
		tree = append(tree, node)
	}
	return tree
}

// Flatten lists parents followed by their children inline; consumers can
// regroup via ParentFieldID.
func Flatten(tree []FieldNode) []models.Field {
	var out []models.Field
	for _, node := range tree {
		out = append(out, node.Field)
		for _, child := range node.Children {
			out = append(out, child.Field)
		}
	}
	return out
}

// FindNode looks a top-level field up by name.
func FindNode(tree []FieldNode, name string) (FieldNode, bool) {
	for _, node := range tree {
		if node.Field.Name == name {
			return node, true
		}
	}
	return FieldNode{}, false
}
