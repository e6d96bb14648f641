package engine

// ManhattanDistance calculates the Manhattan distance between two spaces
func ManhattanDistance(from, to Space) int {
	return abs(from.Column-to.Column) + abs(from.Row-to.Row)
}

// CountTerrain counts the cells of a given terrain
func CountTerrain(grid *Grid, terrain Terrain) int {
	count := 0
	for _, space := range grid.Spaces() {
		if cell, _ := grid.Get(space); cell.Terrain == terrain {
			count++
		}
	}
	return count
}

// NearestEndzone finds the closest endzone cell to a space by Manhattan distance
func NearestEndzone(grid *Grid, from Space) (Space, int, bool) {
	minDistance := -1
	nearest := NoSpace
	for _, space := range grid.Spaces() {
		cell, _ := grid.Get(space)
		if cell.Terrain != Endzone {
			continue
		}
		distance := ManhattanDistance(from, space)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = space
		}
	}
	return nearest, minDistance, minDistance >= 0
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
