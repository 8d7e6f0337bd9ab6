package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Composed ids are part of the response contract: downstream consumers derive
// them from the endpoints, so every format lives here.

const biolinkPrefix = "biolink:"

// StripPrefix removes the biolink namespace from a predicate or category.
func StripPrefix(s string) string {
	return strings.TrimPrefix(s, biolinkPrefix)
}

// SubclassEdgeID identifies the explicit subclass_of edge from an expanded
// descendant node to its queried ancestor.
func SubclassEdgeID(subject, object string) string {
	return fmt.Sprintf("expanded-%s-subclass_of-%s", subject, object)
}

// IsSubclassEdgeID reports whether id was built by SubclassEdgeID.
func IsSubclassEdgeID(id string) bool {
	return strings.HasPrefix(id, "expanded-")
}

// ViaSubclassEdgeID identifies the shortcut edge that re-expresses an edge on
// the queried ancestor instead of the expanded descendant.
func ViaSubclassEdgeID(subject, predicate, object string) string {
	return fmt.Sprintf("%s-%s-%s-via_subclass", subject, StripPrefix(predicate), object)
}

func IsViaSubclassEdgeID(id string) bool {
	return strings.HasSuffix(id, "-via_subclass")
}

// SubclassSupportGraphID is the n-th support graph of a via_subclass edge.
func SubclassSupportGraphID(suffix int, shortcutEdgeID string) string {
	return fmt.Sprintf("support%d-%s", suffix, shortcutEdgeID)
}

// PathfinderEdgeID identifies the derived subject→object shortcut of a
// pathfinder query.
func PathfinderEdgeID(subject, predicate, object string) string {
	return fmt.Sprintf("pathfinder-%s-%s-%s", subject, StripPrefix(predicate), object)
}

// PathfinderSupportGraphID identifies the support graph of one pathfinder
// result: the path subject → intermediate → object.
func PathfinderSupportGraphID(subject, intermediate, object string) string {
	return fmt.Sprintf("pathfinder-%s-%s-%s", subject, intermediate, object)
}

// HopEdgeID identifies an edge standing for a multi-edge template segment.
func HopEdgeID(subject, object string) string {
	return fmt.Sprintf("%s-related_to-%s-via_path", subject, object)
}

// PathSupportGraphID is a stable id for the support graph listing edgeIDs.
// The ids are hashed so that long template segments keep a bounded id.
func PathSupportGraphID(edgeIDs []string) string {
	return "path-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(edgeIDs, "\x1f"))).String()
}
