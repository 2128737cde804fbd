package hierarchy

import (
	"context"

	"github.com/acacia-erp/acacia-sdk/pkg/repo"
	"github.com/acacia-erp/acacia-sdk/pkg/serrors"
)

// Node is the tree-node projection the searcher operates on. A nil
// ParentID marks a root; the parent relation must stay acyclic.
type Node struct {
	ID       int64
	Name     string
	ParentID *int64
}

// NameValue pairs a node id with its computed display path.
type NameValue struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}

// Repository is the search contract the hosting persistence engine
// provides: resolve a domain filter to an ordered node sequence. A limit
// of 0 means no limit.
type Repository interface {
	Search(ctx context.Context, filter repo.Expr, limit int) ([]Node, error)
}

var (
	ErrDepthExceeded   = serrors.NewError("HIERARCHY_DEPTH_EXCEEDED", "ancestor chain exceeds the maximum tree depth", "")
	ErrRecursion       = serrors.NewError("HIERARCHY_RECURSION", "you cannot create recursive records", "")
	ErrDuplicateName   = serrors.NewError("HIERARCHY_DUP_NAME", "names must be unique", "")
	ErrBrokenAncestry = serrors.NewError("HIERARCHY_BROKEN_ANCESTRY", "parent reference points at a missing node", "")
)

const (
	// DefaultMaxDepth bounds ancestor walks and path recursion. Deeper
	// trees are treated as corrupt.
	DefaultMaxDepth = 64

	defaultSearchLimit = 100
)

type Searcher struct {
	repo     Repository
	maxDepth int
}

func NewSearcher(r Repository) *Searcher {
	return &Searcher{repo: r, maxDepth: DefaultMaxDepth}
}

// DisplayName walks parent links from the node to its root, collecting
// names, and encodes them root-first. Always computed on read; display
// names are never cached, so ancestor renames cannot go stale.
func (s *Searcher) DisplayName(ctx context.Context, node Node) (string, error) {
	names, err := s.ancestorNames(ctx, node)
	if err != nil {
		return "", err
	}
	reverse(names)
	return JoinPath(names), nil
}

// NameGet resolves a node sequence to (id, display name) pairs in the
// given order.
func (s *Searcher) NameGet(ctx context.Context, nodes []Node) ([]NameValue, error) {
	out := make([]NameValue, 0, len(nodes))
	for _, n := range nodes {
		name, err := s.DisplayName(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, NameValue{ID: n.ID, DisplayName: name})
	}
	return out, nil
}

// SearchByPath is the inverse of DisplayName: it parses a slash path back
// into a domain filter and resolves it. Symmetric with display for
// positive operators: searching a node's own display name always finds
// the node. For negative operators only the immediate parent is negated,
// not the full ancestor chain — kept as-is for parity with the original
// search policy. Ancestor resolution is always fuzzy (ilike) regardless
// of the leaf operator.
func (s *Searcher) SearchByPath(ctx context.Context, name string, extra repo.Expr, op repo.Op, limit int) ([]NameValue, error) {
	return s.searchByPath(ctx, name, extra, op, limit, 0)
}

func (s *Searcher) searchByPath(ctx context.Context, name string, extra repo.Expr, op repo.Op, limit, depth int) ([]NameValue, error) {
	if depth > s.maxDepth {
		return nil, ErrDepthExceeded
	}
	if op == "" {
		op = repo.OpILike
	}
	if limit == 0 {
		limit = defaultSearchLimit
	}
	if name == "" {
		nodes, err := s.repo.Search(ctx, extra, limit)
		if err != nil {
			return nil, err
		}
		return s.NameGet(ctx, nodes)
	}

	segments := SplitPath(name)
	leaf := segments[len(segments)-1]
	domain := repo.Where("name", op, leaf)

	if len(segments) > 1 {
		ancestorPath := JoinPath(segments[:len(segments)-1])
		ancestors, err := s.searchByPath(ctx, ancestorPath, extra, repo.OpILike, limit, depth+1)
		if err != nil {
			return nil, err
		}
		ancestorIDs := make([]int64, 0, len(ancestors))
		for _, a := range ancestors {
			ancestorIDs = append(ancestorIDs, a.ID)
		}

		if op.Negative() {
			domain = repo.Or(repo.Where("parent_id", repo.OpNotIn, ancestorIDs), domain)
		} else {
			domain = repo.And(repo.Where("parent_id", repo.OpIn, ancestorIDs), domain)
		}

		// Constrain every ancestor level independently by substring
		// match on the corresponding path suffix.
		for i := 1; i < len(segments); i++ {
			suffix := repo.Where("name", op, JoinPath(segments[len(segments)-1-i:]))
			if op.Negative() {
				domain = repo.And(suffix, domain)
			} else {
				domain = repo.Or(suffix, domain)
			}
		}
	}

	filter := domain
	if extra != nil {
		filter = repo.And(domain, extra)
	}
	nodes, err := s.repo.Search(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	return s.NameGet(ctx, nodes)
}

// CheckUniqueName fails when any other record in the table carries the
// exact same name. Uniqueness is global, not per parent.
func (s *Searcher) CheckUniqueName(ctx context.Context, id int64, name string) error {
	nodes, err := s.repo.Search(ctx, repo.Where("name", repo.OpEq, name), 0)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if n.ID != id {
			return ErrDuplicateName
		}
	}
	return nil
}

// CheckRecursion fails when reparenting the node under newParentID would
// make the node its own ancestor.
func (s *Searcher) CheckRecursion(ctx context.Context, id int64, newParentID *int64) error {
	if newParentID == nil {
		return nil
	}
	visited := map[int64]bool{id: true}
	current := *newParentID
	for depth := 0; ; depth++ {
		if depth > s.maxDepth {
			return ErrDepthExceeded
		}
		if visited[current] {
			return ErrRecursion
		}
		visited[current] = true
		node, err := s.getByID(ctx, current)
		if err != nil {
			return err
		}
		if node.ParentID == nil {
			return nil
		}
		current = *node.ParentID
	}
}

func (s *Searcher) ancestorNames(ctx context.Context, node Node) ([]string, error) {
	names := []string{node.Name}
	current := node
	for depth := 0; current.ParentID != nil; depth++ {
		if depth > s.maxDepth {
			return nil, ErrDepthExceeded
		}
		parent, err := s.getByID(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}
		names = append(names, parent.Name)
		current = parent
	}
	return names, nil
}

func (s *Searcher) getByID(ctx context.Context, id int64) (Node, error) {
	nodes, err := s.repo.Search(ctx, repo.Where("id", repo.OpIn, []int64{id}), 1)
	if err != nil {
		return Node{}, err
	}
	if len(nodes) == 0 {
		return Node{}, ErrBrokenAncestry
	}
	return nodes[0], nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
