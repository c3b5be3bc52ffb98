package main

import (
	"fmt"

	"github.com/spf13/cobra"

	batchModels "copydesk/internal/domain/models/batch"
	"copydesk/internal/service/batch"
)

var (
	allCount        int
	unfinishedCount int
	stage           int
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Compute the progress bar value of a job snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if unfinishedCount > allCount {
			return fmt.Errorf("unfinished (%d) exceeds all (%d)", unfinishedCount, allCount)
		}

		p := batch.ComputeProgress(&batchModels.Job{
			AllCount:        allCount,
			UnfinishedCount: unfinishedCount,
			Stage:           stage,
		})
		if !p.Visible {
			cmd.Println("hidden")
			return nil
		}
		cmd.Printf("%.1f%%\n", p.Percent)
		return nil
	},
}

func init() {
	progressCmd.Flags().IntVar(&allCount, "all", 0, "number of products in the job")
	progressCmd.Flags().IntVar(&unfinishedCount, "unfinished", 0, "products not yet finished")
	progressCmd.Flags().IntVar(&stage, "stage", 0, "stage offset inside the current product")

	rootCmd.AddCommand(progressCmd)
}
