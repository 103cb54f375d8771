package transfer

import "math"

// Node kinds
const (
	KindTopic = "topic"
)

type (
	File struct {
		Checksum  string `json:"checksum" yaml:"checksum"`
		Size      int64  `json:"size" yaml:"size"`
		Available bool   `json:"available" yaml:"available"`
	}

	// ContentNode is a node of a channel tree as offered for transfer.
	ContentNode struct {
		ID        string `json:"id" yaml:"id" validate:"notblank"`
		ContentID string `json:"content_id" yaml:"content_id"` // shared by copies of the same resource
		Kind      string `json:"kind" yaml:"kind"`
		Available bool   `json:"available" yaml:"available"`
		Files     []File `json:"files" yaml:"files"`
	}

	Selection struct {
		Size          int64 `json:"size" yaml:"size"`
		ResourceCount int   `json:"resource_count" yaml:"resource_count"`
	}
)

// Measure sizes a selection of nodes.
// Size adds up the available files of available nodes, counting each checksum once; it saturates at math.MaxInt64.
// ResourceCount counts the available non-topic nodes, counting each content ID once.
func Measure(nodes []ContentNode) Selection {
	var sel Selection
	checksums := make(map[string]struct{})
	contentIDs := make(map[string]struct{})

	for _, node := range nodes {
		if !node.Available {
			continue
		}
		for _, f := range node.Files {
			if !f.Available || f.Size <= 0 {
				continue
			}
			if _, ok := checksums[f.Checksum]; ok {
				continue
			}
			checksums[f.Checksum] = struct{}{}
			if sel.Size > math.MaxInt64-f.Size {
				sel.Size = math.MaxInt64 // saturates
			} else {
				sel.Size += f.Size
			}
		}

		if node.Kind == KindTopic {
			continue
		}
		contentID := node.ContentID
		if contentID == "" {
			contentID = node.ID
		}
		if _, ok := contentIDs[contentID]; !ok {
			contentIDs[contentID] = struct{}{}
			sel.ResourceCount++
		}
	}
	return sel
}
