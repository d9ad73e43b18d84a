package driveindex

import (
	"context"
	"fmt"
	"strings"

	"drive-copilot-be/pkg/apperror"
	"drive-copilot-be/pkg/drive"
)

// AmbiguousError is returned when a name matches more than one item. Paths
// lists the distinct candidate paths in index order.
type AmbiguousError struct {
	Name  string
	Paths []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches %d items: %s", e.Name, len(e.Paths), strings.Join(e.Paths, ", "))
}

type IndexLoader interface {
	LoadIndex(ctx context.Context, userID string) (*Index, error)
}

// Resolver maps a user-supplied name to exactly one indexed item.
type Resolver struct {
	loader IndexLoader
}

func NewResolver(loader IndexLoader) *Resolver {
	return &Resolver{loader: loader}
}

// FindItemByName tries an exact name match, then a case-insensitive one. A
// query containing "/" that matches no name is compared against item paths.
func (r *Resolver) FindItemByName(ctx context.Context, userID, name string) (*drive.Item, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return nil, apperror.New(apperror.KindNotFound, "Please tell me the name of the file or folder.")
	}

	index, err := r.loader.LoadIndex(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindCollaborator, "I could not read your Drive index.", err)
	}
	if index == nil {
		return nil, notFound(query)
	}
	return Lookup(index.Items, query)
}

// Lookup runs the resolution rules over items. Names win over paths, so an
// item whose name itself contains "/" is always reachable by that name.
func Lookup(items []drive.Item, query string) (*drive.Item, error) {
	name := func(it *drive.Item) string { return it.Name }
	matches := match(items, query, name)

	if len(matches) == 0 && strings.Contains(query, "/") {
		query = strings.Trim(query, "/")
		path := func(it *drive.Item) string { return it.Path }
		matches = match(items, query, path)
	}

	switch len(matches) {
	case 0:
		return nil, notFound(query)
	case 1:
		item := items[matches[0]]
		return &item, nil
	}

	paths := distinctPaths(items, matches)
	if len(paths) == 1 {
		// Same name in the same folder: no path tells them apart, so take
		// the most recently modified one.
		item := items[mostRecent(items, matches)]
		return &item, nil
	}
	return nil, &AmbiguousError{Name: query, Paths: paths}
}

// match returns the exact matches of field, or the case-insensitive ones when
// there are none.
func match(items []drive.Item, query string, field func(*drive.Item) string) []int {
	matches := collect(items, func(it *drive.Item) bool { return field(it) == query })
	if len(matches) == 0 {
		matches = collect(items, func(it *drive.Item) bool { return strings.EqualFold(field(it), query) })
	}
	return matches
}

func distinctPaths(items []drive.Item, matches []int) []string {
	seen := make(map[string]bool, len(matches))
	paths := make([]string, 0, len(matches))
	for _, i := range matches {
		p := items[i].DisplayName()
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

// mostRecent picks the latest ModifiedTime; ties keep index order.
func mostRecent(items []drive.Item, matches []int) int {
	best := matches[0]
	for _, i := range matches[1:] {
		if items[i].ModifiedTime.After(items[best].ModifiedTime) {
			best = i
		}
	}
	return best
}

func collect(items []drive.Item, match func(*drive.Item) bool) []int {
	var out []int
	for i := range items {
		if match(&items[i]) {
			out = append(out, i)
		}
	}
	return out
}

func notFound(name string) error {
	return apperror.New(apperror.KindNotFound, fmt.Sprintf("I couldn't find '%s' in your Drive.", name))
}
