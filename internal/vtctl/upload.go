package vtctl

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	uploadParallel  int
	uploadChunkSize int
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a video and fan out transcoding jobs",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().IntVarP(&uploadParallel, "parallel", "p", 4, "parallel chunk uploads")
	uploadCmd.Flags().IntVar(&uploadChunkSize, "chunk-size", defaultChunkSize, "chunk size in bytes")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := cmd.Context()

	size, err := fileSize(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	session, err := apiClient.CreateSession(ctx, path, size, "video/mp4")
	if err != nil {
		return fmt.Errorf("create upload session: %w", err)
	}
	color.Cyan("session %s, %d chunks", session.SessionID, session.TotalChunks)

	bar := progressbar.NewOptions(session.TotalChunks,
		progressbar.OptionSetDescription("uploading"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "[green]=[reset]", SaucerHead: "[green]>[reset]",
			SaucerPadding: " ", BarStart: "[", BarEnd: "]",
		}),
	)

	chunks := make(chan indexedChunk)
	go readChunks(f, uploadChunkSize, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadParallel)

	for chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			if _, err := apiClient.UploadChunk(gctx, session.SessionID, chunk.index, chunk.data); err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.index, err)
			}
			_ = bar.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()

	result, err := apiClient.Complete(ctx, session.SessionID)
	if err != nil {
		return fmt.Errorf("complete upload: %w", err)
	}

	color.Green("✓ video %s queued for transcoding", result.VideoID)
	return nil
}

type indexedChunk struct {
	index int
	data  []byte
}

func readChunks(f *os.File, chunkSize int, out chan<- indexedChunk) {
	defer close(out)
	buf := make([]byte, chunkSize)
	index := 0
	for {
		n, err := f.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			out <- indexedChunk{index: index, data: data}
			index++
		}
		if err != nil {
			return
		}
	}
}
