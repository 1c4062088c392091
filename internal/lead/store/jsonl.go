package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"leadgate/internal/lead/models"
)

// JSONL persists the intake log as newline-delimited JSON, one atomic
// line per event. The file is strictly append-only: claims are recorded
// as marker lines rather than rewrites, and the full state is replayed
// into memory on open. This keeps the durable contract trivially
// auditable with standard line tools.
type JSONL struct {
	mu   sync.RWMutex
	file *os.File
	mem  *InMemory
}

// jsonlLine is the on-disk envelope. Kind "record" carries a TraceRecord;
// kind "claim" flips the claimed flag for an earlier record.
type jsonlLine struct {
	Kind    string              `json:"kind"`
	Record  *models.TraceRecord `json:"record,omitempty"`
	TraceID string              `json:"traceId,omitempty"`
}

// OpenJSONL opens (or creates) the log at path and replays it.
func OpenJSONL(path string) (*JSONL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lead log: %w", err)
	}

	s := &JSONL{file: file, mem: NewInMemory()}
	if err := s.replay(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return s, nil
}

func (s *JSONL) replay() error {
	if _, err := s.file.Seek(0, 0); err != nil {
		return fmt.Errorf("seek lead log: %w", err)
	}
	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ctx := context.Background()
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var line jsonlLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return fmt.Errorf("corrupt lead log line: %w", err)
		}
		switch line.Kind {
		case "record":
			if line.Record != nil {
				if err := s.mem.Append(ctx, line.Record); err != nil {
					return fmt.Errorf("replay record %s: %w", line.Record.TraceID, err)
				}
			}
		case "claim":
			// Not-found here means the claim outlived a truncated log;
			// surface it, the log is supposed to be complete.
			if _, err := s.mem.SetClaimed(ctx, line.TraceID); err != nil {
				return fmt.Errorf("replay claim %s: %w", line.TraceID, err)
			}
		}
	}
	return scanner.Err()
}

func (s *JSONL) writeLine(line jsonlLine) error {
	raw, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("encode log line: %w", err)
	}
	raw = append(raw, '\n')
	// Single write syscall per line keeps records atomic units; the mutex
	// prevents interleaving between concurrent appends.
	if _, err := s.file.Write(raw); err != nil {
		return fmt.Errorf("append log line: %w", err)
	}
	return nil
}

func (s *JSONL) Append(ctx context.Context, rec *models.TraceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Append(ctx, rec); err != nil {
		return err
	}
	return s.writeLine(jsonlLine{Kind: "record", Record: rec})
}

func (s *JSONL) SetClaimed(ctx context.Context, traceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := s.mem.SetClaimed(ctx, traceID)
	if err != nil || !updated {
		return updated, err
	}
	if err := s.writeLine(jsonlLine{Kind: "claim", TraceID: traceID}); err != nil {
		// The flip is only real once the line is on disk. Roll it back so
		// the claim is not silently lost on restart and a retry can write
		// the line again.
		s.mem.resetClaim(traceID)
		return false, err
	}
	return true, nil
}

func (s *JSONL) FindByTrace(ctx context.Context, traceID string) (*models.TraceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem.FindByTrace(ctx, traceID)
}

func (s *JSONL) Recent(ctx context.Context, limit int) ([]models.TraceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem.Recent(ctx, limit)
}

func (s *JSONL) Summary(ctx context.Context) (models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem.Summary(ctx)
}

// Close flushes nothing (writes are unbuffered) and releases the file.
func (s *JSONL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

var _ Store = (*JSONL)(nil)
var _ Store = (*InMemory)(nil)
