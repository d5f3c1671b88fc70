// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/notify"
)

// ProcessContainer downloads and processes every blob in the container
// sequentially, notifying per-file status. Only one bulk job may run at a
// time; a second call returns ErrJobActive without starting any work.
func (p *Pipeline) ProcessContainer(ctx context.Context, container string, piiScanning bool) ([]core.ProcessingResult, error) {
	if !p.gate.tryAcquire() {
		return nil, ErrJobActive
	}
	defer p.gate.release()

	jobID := uuid.NewString()
	logger := p.logger.With("job", jobID, "container", container)

	names, err := p.blobs.ListNames(ctx, container)
	if err != nil {
		return nil, fmt.Errorf("listing container %s: %w", container, err)
	}
	logger.Info("bulk job started", "files", len(names))

	results := make([]core.ProcessingResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		object, err := p.blobs.Download(ctx, container, name)
		if err != nil {
			logger.Error("download failed", "file", name, "error", err)
			// The uploader tag is unreachable here, so fall back to the
			// same default core.NewFileMetadata applies.
			p.notifier.Notify(ctx, "default", name, notify.StatusFailed)
			results = append(results, core.FatalResult(name, &core.FatalError{
				Type: core.FatalUnclassified,
				Data: fmt.Sprintf("download error: %v", err),
			}))
			continue
		}

		file := core.RawFile{
			Name:       name,
			Content:    object.Payload,
			Uploader:   object.Tags["uploader"],
			Department: object.Tags["department"],
		}

		p.notifier.Notify(ctx, file.Uploader, name, notify.StatusInProgress)
		result := p.Process(ctx, file, piiScanning)
		results = append(results, result)

		status := notify.StatusReady
		if result.Failed() {
			status = notify.StatusFailed
		}
		p.notifier.Notify(ctx, file.Uploader, name, status)
	}

	logger.Info("bulk job finished", "files", len(results))
	return results, nil
}
