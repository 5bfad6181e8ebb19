package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/kanban/internal/domain"
)

// ErrNoLogFile is returned when the log file has not been created yet.
var ErrNoLogFile = errors.New("no log file found")

// ShowLogsInput contains the parameters for showing the log.
type ShowLogsInput struct {
	ItemID int // Only entries for this item (0 = all)
	Lines  int // Number of lines to display from the end (0 = all)
}

// ShowLogsOutput contains the result of showing the log.
type ShowLogsOutput struct {
	LogPath string // Path to the log file
	Content string // Matching log lines
}

// ShowLogs is the use case for viewing the kanban log.
type ShowLogs struct {
	dataDir string
}

// NewShowLogs creates a new ShowLogs use case.
func NewShowLogs(dataDir string) *ShowLogs {
	return &ShowLogs{dataDir: dataDir}
}

// Execute reads the log file and returns the matching lines.
func (uc *ShowLogs) Execute(_ context.Context, in ShowLogsInput) (*ShowLogsOutput, error) {
	logPath := domain.LogPath(uc.dataDir)

	content, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoLogFile, logPath)
		}
		return nil, fmt.Errorf("read log file: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if in.ItemID > 0 {
		tag := fmt.Sprintf("[item-%d]", in.ItemID)
		filtered := lines[:0]
		for _, line := range lines {
			if strings.Contains(line, tag) {
				filtered = append(filtered, line)
			}
		}
		lines = filtered
	}

	// If lines is specified, get only the last N lines
	if in.Lines > 0 && len(lines) > in.Lines {
		lines = lines[len(lines)-in.Lines:]
	}

	result := strings.Join(lines, "\n")
	if result != "" {
		result += "\n"
	}
	return &ShowLogsOutput{
		LogPath: logPath,
		Content: result,
	}, nil
}
