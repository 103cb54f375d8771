package tests

import (
	"github.com/trezcool/coachreports/core/progress"
)

func rowIDs(rows []progress.TableRow) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}
