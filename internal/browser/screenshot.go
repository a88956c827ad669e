package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-jss-crawler/internal/dom"
	"go-jss-crawler/internal/logger"
)

// ScreenshotDebugger handles debug screenshots
type ScreenshotDebugger struct {
	outputDir string
	log       logger.Logger
	now       func() time.Time
}

func NewScreenshotDebugger(dir string, log logger.Logger) *ScreenshotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	return &ScreenshotDebugger{outputDir: dir, log: log, now: time.Now}
}

// CaptureAndLog saves a full-page screenshot named after name and returns its path.
func (s *ScreenshotDebugger) CaptureAndLog(page dom.Page, name, message string) (string, error) {
	if s == nil || page == nil {
		return "", nil
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	timestamp := s.now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	s.log.Info("📸 "+message, logger.String("url", page.URL()))

	if err := page.Screenshot(path); err != nil {
		s.log.Warn("⚠️ Failed to capture screenshot", logger.Error(err))
		return "", err
	}

	s.log.Info("Screenshot saved", logger.String("path", path))
	return path, nil
}
