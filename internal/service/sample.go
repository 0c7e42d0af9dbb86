package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"voicebank/internal/model"
	"voicebank/internal/repository"
	"voicebank/internal/storage"
)

var (
	ErrAudioRequired      = errors.New("audio payload is required")
	ErrEmptyAudio         = errors.New("audio payload is empty")
	ErrAudioTooLarge      = errors.New("audio payload exceeds the size limit")
	ErrTextTooLong        = errors.New("transcript exceeds the length limit")
	ErrInvalidLanguage    = errors.New("invalid language")
	ErrInvalidEnvironment = errors.New("invalid environment")
)

// audioExt is the fixed extension of committed recordings; browsers submit
// MediaRecorder output as webm.
const audioExt = ".webm"

// StatsResult is the service-level DTO for dataset aggregate counts.
type StatsResult struct {
	Total         int            `json:"total"`
	ByLanguage    map[string]int `json:"by_language"`
	ByEnvironment map[string]int `json:"by_environment"`
}

// SampleListResult is the service-level DTO for paginated samples.
type SampleListResult struct {
	Items []model.Sample `json:"data"`
	Total int            `json:"total"`
}

// SampleService defines the use cases for collecting and reading samples.
type SampleService interface {
	// Submit validates one contribution, stores the audio blob under a fresh
	// unique filename, then appends one metadata row. Audio file and log row
	// are committed together or not at all: a failed append rolls the blob
	// back.
	Submit(ctx context.Context, r io.Reader, size int64, text, language, environment string) (*model.Sample, error)

	// Stats returns aggregate counts over the dataset. It never fails on a
	// missing or damaged log; it degrades to zero counts instead.
	Stats(ctx context.Context) (*StatsResult, error)

	// List returns samples in submission order using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*SampleListResult, error)
}

// sampleService is a concrete implementation of SampleService.
type sampleService struct {
	store         storage.BlobStore
	repo          repository.SampleRepository
	log           *zap.Logger
	maxAudioBytes int64
	maxTextChars  int

	// seq disambiguates filenames minted in the same nanosecond, so two
	// concurrent submissions can never collide.
	seq atomic.Uint64
}

// Options bound per-submission payload sizes. Zero values fall back to the
// collector defaults (10 MB audio, 1000-char transcript).
type Options struct {
	MaxAudioBytes int64
	MaxTextChars  int
}

// NewSampleService constructs a new SampleService.
func NewSampleService(store storage.BlobStore, repo repository.SampleRepository, log *zap.Logger, opts Options) SampleService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxAudioBytes <= 0 {
		opts.MaxAudioBytes = 10 << 20
	}
	if opts.MaxTextChars <= 0 {
		opts.MaxTextChars = 1000
	}
	return &sampleService{
		store:         store,
		repo:          repo,
		log:           log,
		maxAudioBytes: opts.MaxAudioBytes,
		maxTextChars:  opts.MaxTextChars,
	}
}

func (s *sampleService) Submit(ctx context.Context, r io.Reader, size int64, text, language, environment string) (*model.Sample, error) {
	if r == nil {
		return nil, ErrAudioRequired
	}
	if size <= 0 {
		return nil, ErrEmptyAudio
	}
	if size > s.maxAudioBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrAudioTooLarge, size, s.maxAudioBytes)
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > s.maxTextChars {
		return nil, fmt.Errorf("%w: limit %d characters", ErrTextTooLong, s.maxTextChars)
	}

	lang, err := model.ParseLanguage(language)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLanguage, err)
	}
	env, err := model.ParseEnvironment(environment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvironment, err)
	}

	// All validation passed; nothing below may leave a file without a row or
	// a row without a file.
	name := s.newFilename()

	if err := s.store.Put(ctx, name, r, size); err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}

	sample := &model.Sample{
		Filename:    name,
		Text:        text,
		Language:    lang,
		Environment: env,
	}
	if err := s.repo.Append(ctx, sample); err != nil {
		// Rollback: remove the blob so the dataset never holds an orphan file.
		if delErr := s.store.Delete(ctx, name); delErr != nil {
			return nil, fmt.Errorf("append metadata failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("append metadata failed: %w", err)
	}

	s.log.Info("sample committed",
		zap.String("filename", sample.Filename),
		zap.String("language", string(sample.Language)),
		zap.String("environment", string(sample.Environment)),
		zap.Int64("size", size),
	)
	return sample, nil
}

// newFilename mints a dataset filename that is structurally unique under
// concurrent submissions: nanosecond timestamp plus a process-wide counter.
func (s *sampleService) newFilename() string {
	return fmt.Sprintf("%d-%d%s", time.Now().UnixNano(), s.seq.Add(1), audioExt)
}

func (s *sampleService) Stats(ctx context.Context) (*StatsResult, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		// Display-only damage: report zeros rather than failing the page.
		s.log.Warn("stats read failed, reporting zero counts", zap.Error(err))
		return &StatsResult{ByLanguage: map[string]int{}, ByEnvironment: map[string]int{}}, nil
	}

	res := &StatsResult{
		Total:         stats.Total,
		ByLanguage:    make(map[string]int, len(stats.ByLanguage)),
		ByEnvironment: make(map[string]int, len(stats.ByEnvironment)),
	}
	for lang, n := range stats.ByLanguage {
		res.ByLanguage[string(lang)] = n
	}
	for env, n := range stats.ByEnvironment {
		res.ByEnvironment[string(env)] = n
	}
	return res, nil
}

// List returns paginated samples without exposing repository types.
func (s *sampleService) List(ctx context.Context, limit, offset int) (*SampleListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &SampleListResult{Items: res.Items, Total: res.Total}, nil
}
