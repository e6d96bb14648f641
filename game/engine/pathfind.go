package engine

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"
)

var ErrUnreachable = errors.New("goal was not reached by search")

// SearchResult holds the predecessor and accumulated cost of every visited space.
// The start's predecessor is NoSpace.
type SearchResult struct {
	CameFrom  map[Space]Space
	CostSoFar map[Space]int
}

// Visited reports whether the search reached a space
func (r SearchResult) Visited(space Space) bool {
	_, ok := r.CameFrom[space]
	return ok
}

// frontierItem is a heap entry; seq breaks priority ties in insertion order
type frontierItem struct {
	space    Space
	priority int
	seq      int
}

func newFrontier() *heap.Heap[frontierItem] {
	return heap.New[frontierItem](func(a, b frontierItem) bool {
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.seq < b.seq
	})
}

// Heuristic is the Manhattan distance between two spaces
func Heuristic(a, b Space) int {
	return ManhattanDistance(a, b)
}

// PathFind runs A* from start to goal. The search stops when goal is popped
// from the frontier. An unreachable goal is simply absent from CameFrom.
func PathFind(start, goal Space, graph Graph) SearchResult {
	result := SearchResult{
		CameFrom:  map[Space]Space{start: NoSpace},
		CostSoFar: map[Space]int{start: 0},
	}

	frontier := newFrontier()
	seq := 0
	frontier.Push(frontierItem{space: start, priority: 0, seq: seq})

	for frontier.Size() > 0 {
		item, _ := frontier.Pop()
		current := item.space

		if current == goal {
			break
		}

		for _, next := range graph.Neighbors(current) {
			newCost := result.CostSoFar[current] + graph.Cost(current, next)
			if old, seen := result.CostSoFar[next]; !seen || newCost < old {
				result.CostSoFar[next] = newCost
				result.CameFrom[next] = current
				seq++
				frontier.Push(frontierItem{
					space:    next,
					priority: newCost + Heuristic(next, goal),
					seq:      seq,
				})
			}
		}
	}

	return result
}

// PathReconstruct walks predecessors back from goal. The returned path is
// ordered goal -> start; consumers pop from the end to advance.
func PathReconstruct(start, goal Space, cameFrom map[Space]Space) ([]Space, error) {
	if _, ok := cameFrom[goal]; !ok {
		return nil, fmt.Errorf("reconstruct %s -> %s: %w", start, goal, ErrUnreachable)
	}

	path := []Space{}
	current := goal
	for {
		prev, ok := cameFrom[current]
		if !ok {
			return nil, fmt.Errorf("reconstruct %s -> %s: broken chain at %s: %w", start, goal, current, ErrUnreachable)
		}
		if prev == NoSpace {
			break
		}
		path = append(path, current)
		current = prev
		if len(path) > len(cameFrom) {
			return nil, fmt.Errorf("reconstruct %s -> %s: predecessor cycle: %w", start, goal, ErrUnreachable)
		}
	}
	return append(path, start), nil
}

// RangeFind expands every space whose accumulated cost is strictly below
// maxRange. Neighbors of expanded spaces are recorded, so the visited set
// holds every space reachable within cost maxRange.
func RangeFind(start Space, maxRange int, graph Graph) SearchResult {
	result := SearchResult{
		CameFrom:  map[Space]Space{start: NoSpace},
		CostSoFar: map[Space]int{start: 0},
	}

	frontier := newFrontier()
	seq := 0
	frontier.Push(frontierItem{space: start, priority: 0, seq: seq})

	for frontier.Size() > 0 {
		item, _ := frontier.Pop()
		current := item.space

		// stale entry
		if item.priority > result.CostSoFar[current] {
			continue
		}
		if result.CostSoFar[current] >= maxRange {
			continue
		}

		for _, next := range graph.Neighbors(current) {
			newCost := result.CostSoFar[current] + graph.Cost(current, next)
			if newCost > maxRange {
				continue
			}
			if old, seen := result.CostSoFar[next]; !seen || newCost < old {
				result.CostSoFar[next] = newCost
				result.CameFrom[next] = current
				seq++
				frontier.Push(frontierItem{space: next, priority: newCost, seq: seq})
			}
		}
	}

	return result
}

// Reachable returns every visited space except the start
func Reachable(result SearchResult, start Space) mapset.Set[Space] {
	set := mapset.New[Space]()
	for space := range result.CameFrom {
		if space != start {
			set.Put(space)
		}
	}
	return set
}
