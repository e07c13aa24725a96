package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/surfviz/pkg/observability"
)

// debugHooks logs pipeline and cache events at debug level.
type debugHooks struct {
	logger *log.Logger
}

// InstallDebugHooks routes pipeline and cache events to the CLI logger.
// main calls it when --verbose is set.
func (c *CLI) InstallDebugHooks() {
	h := &debugHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func (h *debugHooks) OnLoadStart(_ context.Context, kind, path string) {
	h.logger.Debug("loading", "kind", kind, "path", path)
}

func (h *debugHooks) OnLoadComplete(_ context.Context, kind, path string, count int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "kind", kind, "path", path, "err", err)
		return
	}
	h.logger.Debug("loaded", "kind", kind, "path", path, "count", count, "duration", d)
}

func (h *debugHooks) OnExportStart(_ context.Context, format, path string) {
	h.logger.Debug("writing", "format", format, "path", path)
}

func (h *debugHooks) OnExportComplete(_ context.Context, format, path string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("write failed", "format", format, "path", path, "err", err)
		return
	}
	h.logger.Debug("wrote", "format", format, "path", path, "bytes", size, "duration", d)
}

func (h *debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h *debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}
