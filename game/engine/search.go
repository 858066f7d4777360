package engine

import "slices"

// SearchResult is the outcome of one solver call. When Found is false Moves is
// nil; the reason is deliberately not reported.
type SearchResult struct {
	Moves    []Move `json:"moves"`
	Found    bool   `json:"found"`
	Depth    int    `json:"depth"`
	Expanded int    `json:"expanded"`
}

// FindPath returns the shortest input sequence that carries start to goal and
// locks it there, or (nil, false).
func FindPath(b *Board, start, goal Placement) ([]Move, bool) {
	r := Search(b, start, goal)
	return r.Moves, r.Found
}

// Search runs the breadth-first placement search and reports search
// statistics along with the path.
func Search(b *Board, start, goal Placement) SearchResult {
	start, goal = start.Normalize(), goal.Normalize()

	canStart := b.Legal(start)
	canFinish := b.Legal(goal)
	canLock := b.Resting(goal)
	if !canStart || !canFinish || !canLock {
		return SearchResult{}
	}

	startKey, goalKey := start.Key(), goal.Key()
	if startKey == goalKey {
		return SearchResult{Moves: []Move{MoveHardDrop}, Found: true}
	}

	queue := []Placement{start}
	visited := map[Key]bool{startKey: true}
	parents := make(map[Key]Key)
	inputs := make(map[Key]Move)

	expanded := 0
	for head := 0; head < len(queue); head++ {
		current := queue[head]
		currentKey := current.Key()
		expanded++

		if currentKey == goalKey {
			raw := reconstruct(parents, inputs, startKey, goalKey)
			return SearchResult{
				Moves:    normalizePath(raw),
				Found:    true,
				Depth:    len(raw),
				Expanded: expanded,
			}
		}

		for _, m := range searchOrder {
			next, ok := ApplyMove(current, b, m)
			if !ok {
				continue
			}
			nextKey := next.Key()
			if visited[nextKey] {
				continue
			}
			visited[nextKey] = true
			parents[nextKey] = currentKey
			inputs[nextKey] = m
			queue = append(queue, next)
		}
	}

	return SearchResult{Expanded: expanded}
}

// Explore returns every placement reachable from start, in breadth-first
// order and deduplicated by key. It returns nil when start is not legal.
func Explore(b *Board, start Placement) []Placement {
	start = start.Normalize()
	if !b.Legal(start) {
		return nil
	}

	queue := []Placement{start}
	visited := map[Key]bool{start.Key(): true}
	for head := 0; head < len(queue); head++ {
		for _, m := range searchOrder {
			next, ok := ApplyMove(queue[head], b, m)
			if !ok {
				continue
			}
			k := next.Key()
			if visited[k] {
				continue
			}
			visited[k] = true
			queue = append(queue, next)
		}
	}
	return queue
}

// reconstruct walks the predecessor chain from goal back to start.
func reconstruct(parents map[Key]Key, inputs map[Key]Move, start, goal Key) []Move {
	var moves []Move
	for k := goal; k != start; k = parents[k] {
		moves = append(moves, inputs[k])
	}
	slices.Reverse(moves)
	return moves
}

// normalizePath folds trailing soft drops into the hard drop that locks the
// piece. The result always ends with exactly one MoveHardDrop.
func normalizePath(raw []Move) []Move {
	end := len(raw)
	for end > 0 && raw[end-1] == MoveSoftDrop {
		end--
	}
	moves := make([]Move, 0, end+1)
	moves = append(moves, raw[:end]...)
	return append(moves, MoveHardDrop)
}
