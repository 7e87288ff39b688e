package drive

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ChildLister lists the direct children of a folder
type ChildLister interface {
	ListChildren(ctx context.Context, ts oauth2.TokenSource, folderID string) ([]*File, error)
}

type queued struct {
	id    string
	depth int
}

// Crawl walks the folder tree under rootID breadth first and returns the ids
// of the root and every file or folder reachable from it. Folders deeper than
// maxDepth are not listed, but their ids are still included when their parent
// was listed. Each folder is listed at most once.
func Crawl(ctx context.Context, lister ChildLister, ts oauth2.TokenSource, rootID string, maxDepth int) ([]string, error) {
	seen := map[string]bool{}
	listed := map[string]bool{}
	var ids []string

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	queue := []queued{{id: rootID, depth: 0}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := queue[0]
		queue = queue[1:]
		if item.depth > maxDepth || listed[item.id] {
			continue
		}
		listed[item.id] = true
		add(item.id)

		children, err := lister.ListChildren(ctx, ts, item.id)
		if err != nil {
			return nil, fmt.Errorf("failed to list children of %s: %w", item.id, err)
		}

		for _, child := range children {
			add(child.ID)
			if child.IsFolder() {
				queue = append(queue, queued{id: child.ID, depth: item.depth + 1})
			}
		}
	}

	logrus.Debugf("Crawled %d descendants of %s (folders listed: %d)", len(ids), rootID, len(listed))
	return ids, nil
}
