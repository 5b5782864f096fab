package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// ShowLogsInput contains the parameters for showing the log.
type ShowLogsInput struct {
	ItemID string // Only entries scoped to this item (empty = all)
	Lines  int    // Number of lines to display from the end (0 = all)
}

// ShowLogsOutput contains the result of showing the log.
type ShowLogsOutput struct {
	LogPath string // Path to the log file
	Content string // Log file content
}

// ShowLogs is the use case for viewing the operation log.
type ShowLogs struct {
	dataDir string
}

// NewShowLogs creates a new ShowLogs use case.
func NewShowLogs(dataDir string) *ShowLogs {
	return &ShowLogs{dataDir: dataDir}
}

// Execute reads the log file, optionally filtered to one item.
func (uc *ShowLogs) Execute(_ context.Context, in ShowLogsInput) (*ShowLogsOutput, error) {
	logPath := domain.LogPath(uc.dataDir)

	content, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("log file %s: %w", logPath, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read log file: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if in.ItemID != "" {
		scope := "[" + domain.LogScope(in.ItemID) + "]"
		kept := lines[:0]
		for _, line := range lines {
			if strings.Contains(line, scope) {
				kept = append(kept, line)
			}
		}
		lines = kept
	}
	if in.Lines > 0 && len(lines) > in.Lines {
		lines = lines[len(lines)-in.Lines:]
	}

	return &ShowLogsOutput{
		LogPath: logPath,
		Content: strings.Join(lines, "\n"),
	}, nil
}
