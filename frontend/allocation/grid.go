package allocation

import (
	"fmt"

	"logistica/models"
)

// StorageDest is the destination written on schedules fully allocated here.
const StorageDest = "Rua 08"

// Grid is the Rua 08 layout: buildings (prédios) by levels (níveis), both
// numbered from 1.
type Grid struct {
	Buildings int
	Levels    int
}

// Code renders a position as R08-P{building:02}-N{level}.
func Code(building, level int) string {
	return fmt.Sprintf("R08-P%02d-N%d", building, level)
}

// Contains reports whether the position exists in g.
func (g Grid) Contains(building, level int) bool {
	return building >= 1 && building <= g.Buildings && level >= 1 && level <= g.Levels
}

// Cell is one grid position with what is allocated there.
type Cell struct {
	Code     string
	Building int
	Level    int
	Volume   int
	Entries  []models.AllocationEntry
}

// Occupied reports whether anything is allocated at the cell.
func (c Cell) Occupied() bool {
	return c.Volume > 0
}

// Occupancy lays entries out over g. Rows are levels from the top down,
// columns are buildings in order. Entries outside the grid are ignored.
func (g Grid) Occupancy(entries []models.AllocationEntry) [][]Cell {
	rows := make([][]Cell, 0, g.Levels)
	index := make(map[[2]int]*Cell, g.Buildings*g.Levels)
	for level := g.Levels; level >= 1; level-- {
		row := make([]Cell, g.Buildings)
		for b := 1; b <= g.Buildings; b++ {
			row[b-1] = Cell{Code: Code(b, level), Building: b, Level: level}
		}
		rows = append(rows, row)
	}
	for _, row := range rows {
		for i := range row {
			index[[2]int{row[i].Building, row[i].Level}] = &row[i]
		}
	}
	for _, e := range entries {
		cell, ok := index[[2]int{e.Building, e.Level}]
		if !ok {
			continue
		}
		cell.Volume += e.AllocatedVolume
		cell.Entries = append(cell.Entries, e)
	}
	return rows
}

// AllocatedVolume sums the allocated volume of nfd.
func AllocatedVolume(entries []models.AllocationEntry, nfd string) int {
	total := 0
	for _, e := range entries {
		if e.NFD == nfd {
			total += e.AllocatedVolume
		}
	}
	return total
}
