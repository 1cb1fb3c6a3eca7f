package sqlite

import (
	"sort"

	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/models"
)

// SQL cannot order "HSK10" after "HSK2" on its own.
func sortLevels(levels []models.LevelSummary) {
	sort.Slice(levels, func(i, j int) bool { return catalog.LessGroup(levels[i].Group, levels[j].Group) })
}
