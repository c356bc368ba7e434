package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const pollInterval = 250 * time.Millisecond

// TailOptions selects which entries Tail returns.
type TailOptions struct {
	// Offset < 0 returns the last Limit matching entries. Otherwise reading
	// starts at Offset, typically the Offset of a previous result.
	Offset int64
	Limit  int
	// Follow waits up to Wait for new entries when none are available yet.
	Follow bool
	Wait   time.Duration
	Query  Query
}

// TailResult holds the matching entries and the offset to continue from.
type TailResult struct {
	Entries []Entry
	Offset  int64
}

// Tail reads entries from the log file at path. A missing file yields an
// empty result.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	if opts.Offset < 0 {
		entries, offset, err := readLast(path, opts.Limit, opts.Query)
		if err != nil {
			return result, err
		}
		result.Entries = entries
		result.Offset = offset
		if opts.Follow && opts.Wait > 0 && len(entries) == 0 {
			return waitForEntries(ctx, path, offset, opts.Wait, opts.Query)
		}
		return result, nil
	}

	offset := opts.Offset
	if offset > info.Size() {
		// The file was truncated or replaced; start over.
		offset = 0
	}
	entries, next, err := readForward(path, offset, opts.Query)
	if err != nil {
		return result, err
	}
	result.Entries = entries
	result.Offset = next
	if opts.Follow && opts.Wait > 0 && len(entries) == 0 {
		return waitForEntries(ctx, path, next, opts.Wait, opts.Query)
	}
	return result, nil
}

// readLast keeps a ring of the last limit matching entries. limit <= 0 only
// reports the end offset.
func readLast(path string, limit int, query Query) ([]Entry, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	ring := make([]Entry, limit)
	count, idx := 0, 0
	err = scanEntries(file, query, func(entry Entry) {
		ring[idx] = entry
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}
	end, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}

	entries := make([]Entry, count)
	if count == limit {
		for i := 0; i < count; i++ {
			entries[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(entries, ring[:count])
	}
	return entries, end, nil
}

func readForward(path string, offset int64, query Query) ([]Entry, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}
	var entries []Entry
	if err := scanEntries(file, query, func(entry Entry) {
		entries = append(entries, entry)
	}); err != nil {
		return nil, 0, err
	}
	next, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return entries, next, nil
}

// scanEntries reads file to EOF. Only whole lines are consumed, so a line still
// being written is picked up by the next read.
func scanEntries(file *os.File, query Query, emit func(Entry)) error {
	start, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("determine log offset: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	consumed := start
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		line = line[:len(line)-1]
		if line == "" {
			continue
		}
		entry := ParseEntry(line)
		if query.empty() || query.Matches(entry) {
			emit(entry)
		}
	}
	if _, err := file.Seek(consumed, io.SeekStart); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}
	return nil
}

func waitForEntries(ctx context.Context, path string, offset int64, wait time.Duration, query Query) (TailResult, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		entries, next, err := readForward(path, offset, query)
		if err != nil {
			return result, err
		}
		offset = next
		result.Offset = next
		if len(entries) > 0 {
			result.Entries = entries
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}
