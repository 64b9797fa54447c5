// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inference

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/privacyrouter/core/internal/codekind"
	"github.com/privacyrouter/core/internal/config"
	"github.com/privacyrouter/core/pkg/logging"
)

// downloadTimeout is spec.md §5's "HTTP download timeout: ≥2h".
const downloadTimeout = 2 * time.Hour

// progress tracks per-model download percent-complete, monotonically
// non-decreasing up to 99 then jumping to 100 after atomic rename
// (spec.md §5 "Ordering guarantees").
type progress struct {
	percent atomic.Int64
}

func (p *progress) set(v int64) {
	if v > 99 {
		v = 99
	}
	if cur := p.percent.Load(); v > cur {
		p.percent.Store(v)
	}
}

func (p *progress) complete() { p.percent.Store(100) }

func (p *progress) get() int { return int(p.percent.Load()) }

// downloadModel fetches m from its registry URL into the models directory,
// writing to a sibling ".downloading" temp file and renaming atomically on
// completion (spec.md §4.1 "Download"). When ExpectedSHA256 is set, the
// running SHA-256 digest is compared against it; on a mismatch the temp
// file is removed and a ChecksumMismatch error is returned.
func downloadModel(ctx context.Context, client *http.Client, m config.ModelEntry, destPath string, p *progress, log *logging.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		return codekind.Wrap(codekind.DownloadFailed, "build request for "+m.ID, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return codekind.Wrap(codekind.DownloadFailed, "fetch "+m.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return codekind.New(codekind.DownloadFailed, fmt.Sprintf("%s: unexpected status %s", m.ID, resp.Status))
	}

	tmpPath := destPath + ".downloading"
	f, err := os.Create(tmpPath)
	if err != nil {
		return codekind.Wrap(codekind.DownloadFailed, "create temp file for "+m.ID, err)
	}

	hash := sha256.New()
	var written int64
	buf := make([]byte, 256*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				os.Remove(tmpPath)
				return codekind.Wrap(codekind.DownloadFailed, "write temp file for "+m.ID, werr)
			}
			hash.Write(buf[:n])
			written += int64(n)
			if m.DeclaredBytes > 0 {
				p.set(written * 100 / m.DeclaredBytes)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			os.Remove(tmpPath)
			return codekind.Wrap(codekind.DownloadFailed, "read body for "+m.ID, readErr)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return codekind.Wrap(codekind.DownloadFailed, "close temp file for "+m.ID, err)
	}

	digest := hex.EncodeToString(hash.Sum(nil))
	if m.ExpectedSHA256 != "" && digest != m.ExpectedSHA256 {
		os.Remove(tmpPath)
		log.Error("downloaded model digest mismatch, deleting", "model_id", m.ID, "expected", m.ExpectedSHA256, "actual", digest)
		return codekind.New(codekind.ChecksumMismatch, fmt.Sprintf("%s: digest %s does not match expected %s", m.ID, digest, m.ExpectedSHA256))
	}
	log.Info("downloaded model digest computed", "model_id", m.ID, "sha256", digest)

	if err := os.Rename(tmpPath, destPath); err != nil {
		return codekind.Wrap(codekind.DownloadFailed, "rename into place for "+m.ID, err)
	}
	p.complete()
	return nil
}
