package controller

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	m "gooze.dev/pkg/mureport/internal/model"
)

type fileStat struct {
	path      string
	mutations int
	detected  int
}

func buildFileStats(conflicts map[m.Path][]m.Conflict) []fileStat {
	statsList := make([]fileStat, 0, len(conflicts))

	for p, regions := range conflicts {
		stat := fileStat{path: string(p)}

		for _, conflict := range regions {
			for _, mu := range conflict.Mutations {
				stat.mutations++

				if mu.Status == m.StatusDetected {
					stat.detected++
				}
			}
		}

		statsList = append(statsList, stat)
	}

	sort.Slice(statsList, func(i, j int) bool {
		return statsList[i].path < statsList[j].path
	})

	return statsList
}

func renderSummaryTable(statsList []fileStat) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Mutations", "Detected"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	totalMutations := 0
	totalDetected := 0

	for _, stat := range statsList {
		table.Append([]string{stat.path, fmt.Sprintf("%d", stat.mutations), fmt.Sprintf("%d", stat.detected)})

		totalMutations += stat.mutations
		totalDetected += stat.detected
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(statsList)),
		fmt.Sprintf("%d", totalMutations),
		fmt.Sprintf("%d", totalDetected),
	})

	table.Render()

	return tableBuffer.String()
}
