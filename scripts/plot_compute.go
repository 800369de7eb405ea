// Plots the per-group temperature traces of a sampler output file.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	plt "github.com/phil-mansfield/pyplot"
	"github.com/phil-mansfield/table"
)

func main() {
	if len(os.Args) != 4 {
		log.Fatalf(
			"Required file use: $ %s compute_file group_count out_file",
			os.Args[0],
		)
	}

	file, out := os.Args[1], os.Args[3]
	groups, err := strconv.Atoi(os.Args[2])
	if err != nil || groups < 1 {
		log.Fatalf("Invalid group count '%s'.", os.Args[2])
	}

	colIdxs := make([]int, groups)
	for i := range colIdxs {
		colIdxs[i] = i
	}
	cols, err := table.ReadTable(file, colIdxs, nil)
	if err != nil {
		log.Fatal(err.Error())
	}

	samples := make([]float64, len(cols[0]))
	for i := range samples {
		samples[i] = float64(i)
	}

	plt.Figure()
	for g := 0; g < groups; g++ {
		plt.Plot(samples, cols[g], plt.LW(2))
	}
	plt.XLabel("Sample", plt.FontSize(16))
	plt.YLabel("$T$ [K]", plt.FontSize(16))
	plt.Title(fmt.Sprintf("Group temperatures (%d groups)", groups))
	plt.SaveFig(out)
	plt.Execute()
}
