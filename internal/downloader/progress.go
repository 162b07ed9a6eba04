package downloader

import (
	"fmt"

	"github.com/tanq16/redl/internal/utils"
)

// ProgressLine renders the carriage-return terminated progress line written
// when ShowProgress is set. An unknown total (<= 0) reports 0%.
func ProgressLine(total, current int64) string {
	percent := 0.0
	if total > 0 {
		percent = float64(current) / float64(total) * 100
	}
	return fmt.Sprintf("Download%.2f%% - %s/%s\r", percent, utils.FormatBytes(current), utils.FormatBytes(total))
}
