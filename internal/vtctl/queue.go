package vtctl

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show job queue statistics",
	RunE:  runQueue,
}

func init() {
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, args []string) error {
	stats, err := apiClient.QueueStats(cmd.Context())
	if err != nil {
		return err
	}

	color.New(color.Bold).Println("queue")
	fmt.Printf("  waiting:   %d\n", stats.Waiting)
	fmt.Printf("  active:    %d\n", stats.Active)
	fmt.Printf("  completed: %d\n", stats.Completed)
	fmt.Printf("  failed:    %d\n", stats.Failed)
	return nil
}
