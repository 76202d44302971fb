// Package api implements the upload coordinator and streaming HTTP
// surface: session lifecycle, chunk intake, assembly, video listing/
// deletion, queue/storage introspection, and playlist/segment serving.
package api

import (
	"github.com/abdul-hamid-achik/videopipeline/internal/eventbus"
	"github.com/abdul-hamid-achik/videopipeline/internal/gc"
	"github.com/abdul-hamid-achik/videopipeline/internal/queue"
	"github.com/abdul-hamid-achik/videopipeline/internal/statestore"
	"github.com/abdul-hamid-achik/videopipeline/internal/storage"
)

// ChunkSize is the fixed server-side chunk size; the assembler itself is
// chunk-size-agnostic, this is just what session-create uses to compute
// totalChunks.
const ChunkSize = 2 * 1024 * 1024

// MaxMissingChunksReported caps the missing-index list returned by
// /upload/complete for readability.
const MaxMissingChunksReported = 10

type Config struct {
	Store statestore.Store
	Bus   *eventbus.Bus
	Disk  *storage.Disk
	Queue queue.Queue
	GC    *gc.Collector

	// MaxUploadSize rejects CreateSessionHandler requests above this total
	// size with a 413 before any chunk is accepted. Zero disables the check.
	MaxUploadSize int64
}
