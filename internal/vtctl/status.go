package vtctl

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status [videoId]",
	Short: "Show transcoding status for a video",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "poll until all resolutions finish")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	videoID := args[0]
	ctx := cmd.Context()

	for {
		video, err := apiClient.GetVideo(ctx, videoID)
		if err != nil {
			return err
		}

		printVideoStatus(video)

		if !statusWatch || video.Status == "completed" || video.Status == "failed" {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func printVideoStatus(v *VideoStatus) {
	fmt.Printf("%s  %s\n", color.HiBlackString(v.ID), v.Filename)
	fmt.Printf("  status: %s\n", statusColor(v.Status))
	if v.UploadPct < 100 {
		fmt.Printf("  upload: %.0f%%\n", v.UploadPct)
	}
	for _, res := range []string{"low", "medium", "high"} {
		if pct, ok := v.Transcoding[res]; ok {
			fmt.Printf("  %-6s %.0f%%\n", res, pct)
		}
	}
	for res, url := range v.HLSUrls {
		fmt.Printf("  %s playlist: %s\n", res, url)
	}
	if v.Error != "" {
		color.Red("  error: %s", v.Error)
	}
}

func statusColor(status string) string {
	switch status {
	case "completed":
		return color.GreenString(status)
	case "failed":
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}
