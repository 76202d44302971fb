package vtctl

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiClient *Client
)

var rootCmd = &cobra.Command{
	Use:   "vtctl",
	Short: "vtctl is the command-line client for the transcoding pipeline",
	Long: `vtctl uploads videos, polls transcoding status, and inspects the
job queue of a running videopipeline server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		apiClient = NewClient(serverURL)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "videopipeline server base URL")
}

// Execute runs the CLI, cancelling on interrupt so an in-flight upload
// stops issuing new chunk requests promptly.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return rootCmd.ExecuteContext(ctx)
}
