package statestore

import (
	"context"
	"sort"
	"sync"
)

// Store is the semantic surface the rest of the pipeline depends on. The
// in-memory implementation below is the only one that ships today, but
// every mutation is expressed as a narrow, named operation so a
// transactional backend could satisfy this interface without touching any
// caller: no ad-hoc partial-object spreads anywhere above this boundary.
type Store interface {
	CreateVideo(ctx context.Context, v *Video) error
	GetVideo(ctx context.Context, id string) (*Video, bool)
	ListVideos(ctx context.Context) []*Video
	UpdateVideo(ctx context.Context, id string, update func(*Video)) (*Video, bool)
	DeleteVideo(ctx context.Context, id string) bool

	CreateSession(ctx context.Context, s *UploadSession) error
	GetSession(ctx context.Context, id string) (*UploadSession, bool)
	// MarkChunkReceived is idempotent: re-marking an already-received index
	// is a no-op on state but still returns the current session. It also
	// recomputes the owning video's upload percent in the same critical
	// section, so a concurrent reader never observes a chunk-count update
	// without the matching percentage.
	MarkChunkReceived(ctx context.Context, sessionID string, index int) (*UploadSession, bool)
	UpdateSession(ctx context.Context, id string, update func(*UploadSession)) (*UploadSession, bool)
	DeleteSession(ctx context.Context, id string) bool
	ListActiveSessionIDs(ctx context.Context) map[string]bool

	CreateJob(ctx context.Context, j *TranscodingJob) error
	GetJob(ctx context.Context, id string) (*TranscodingJob, bool)
	ListJobsByVideo(ctx context.Context, videoID string) []*TranscodingJob
	UpdateJob(ctx context.Context, id string, update func(*TranscodingJob)) (*TranscodingJob, bool)

	QueueStats(ctx context.Context) QueueStats
}

// InMemory is the reference Store implementation: three maps, each guarded
// by its own mutex, matching the per-record-type critical section the
// concurrency model requires.
type InMemory struct {
	videoMu  sync.Mutex
	videos   map[string]*Video

	sessionMu sync.Mutex
	sessions  map[string]*UploadSession

	jobMu sync.Mutex
	jobs  map[string]*TranscodingJob
}

func NewInMemory() *InMemory {
	return &InMemory{
		videos:   make(map[string]*Video),
		sessions: make(map[string]*UploadSession),
		jobs:     make(map[string]*TranscodingJob),
	}
}

var _ Store = (*InMemory)(nil)

func cloneVideo(v *Video) *Video {
	cp := *v
	cp.Transcoding = make(map[Resolution]float64, len(v.Transcoding))
	for k, val := range v.Transcoding {
		cp.Transcoding[k] = val
	}
	cp.HLSUrls = make(map[Resolution]string, len(v.HLSUrls))
	for k, val := range v.HLSUrls {
		cp.HLSUrls[k] = val
	}
	cp.Resolutions = append([]Resolution(nil), v.Resolutions...)
	return &cp
}

func (s *InMemory) CreateVideo(ctx context.Context, v *Video) error {
	s.videoMu.Lock()
	defer s.videoMu.Unlock()
	s.videos[v.ID] = cloneVideo(v)
	return nil
}

func (s *InMemory) GetVideo(ctx context.Context, id string) (*Video, bool) {
	s.videoMu.Lock()
	defer s.videoMu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, false
	}
	return cloneVideo(v), true
}

func (s *InMemory) ListVideos(ctx context.Context) []*Video {
	s.videoMu.Lock()
	defer s.videoMu.Unlock()
	out := make([]*Video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, cloneVideo(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *InMemory) UpdateVideo(ctx context.Context, id string, update func(*Video)) (*Video, bool) {
	s.videoMu.Lock()
	defer s.videoMu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, false
	}
	update(v)
	return cloneVideo(v), true
}

func (s *InMemory) DeleteVideo(ctx context.Context, id string) bool {
	s.videoMu.Lock()
	defer s.videoMu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return false
	}
	delete(s.videos, id)
	return true
}

func cloneSession(sess *UploadSession) *UploadSession {
	cp := *sess
	cp.ReceivedChunks = make(map[int]bool, len(sess.ReceivedChunks))
	for k, v := range sess.ReceivedChunks {
		cp.ReceivedChunks[k] = v
	}
	return &cp
}

func (s *InMemory) CreateSession(ctx context.Context, sess *UploadSession) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (s *InMemory) GetSession(ctx context.Context, id string) (*UploadSession, bool) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return cloneSession(sess), true
}

func (s *InMemory) MarkChunkReceived(ctx context.Context, sessionID string, index int) (*UploadSession, bool) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	sess.ReceivedChunks[index] = true
	received := len(sess.ReceivedChunks)
	total := sess.TotalChunks

	pct := 0.0
	if total > 0 {
		pct = float64(received) / float64(total) * 100
	}
	s.videoMu.Lock()
	if v, ok := s.videos[sess.VideoID]; ok {
		v.UploadPct = pct
	}
	s.videoMu.Unlock()

	return cloneSession(sess), true
}

func (s *InMemory) UpdateSession(ctx context.Context, id string, update func(*UploadSession)) (*UploadSession, bool) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	update(sess)
	return cloneSession(sess), true
}

func (s *InMemory) DeleteSession(ctx context.Context, id string) bool {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *InMemory) ListActiveSessionIDs(ctx context.Context) map[string]bool {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	out := make(map[string]bool)
	for id, sess := range s.sessions {
		if sess.Status == SessionActive {
			out[id] = true
		}
	}
	return out
}

func cloneJob(j *TranscodingJob) *TranscodingJob {
	cp := *j
	return &cp
}

func (s *InMemory) CreateJob(ctx context.Context, j *TranscodingJob) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	s.jobs[j.ID] = cloneJob(j)
	return nil
}

func (s *InMemory) GetJob(ctx context.Context, id string) (*TranscodingJob, bool) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return cloneJob(j), true
}

func (s *InMemory) ListJobsByVideo(ctx context.Context, videoID string) []*TranscodingJob {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	var out []*TranscodingJob
	for _, j := range s.jobs {
		if j.VideoID == videoID {
			out = append(out, cloneJob(j))
		}
	}
	return out
}

func (s *InMemory) UpdateJob(ctx context.Context, id string, update func(*TranscodingJob)) (*TranscodingJob, bool) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	update(j)
	return cloneJob(j), true
}

func (s *InMemory) QueueStats(ctx context.Context) QueueStats {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	var stats QueueStats
	for _, j := range s.jobs {
		switch j.Status {
		case JobPending:
			stats.Waiting++
		case JobProcessing:
			stats.Active++
		case JobCompleted:
			stats.Completed++
		case JobFailed:
			stats.Failed++
		}
	}
	return stats
}
