package app

import (
	"fmt"

	"bmcnav/internal/config"
	"bmcnav/internal/logger"
	"bmcnav/internal/report"
)

func chooseReportStore(cfg *config.Config, log *logger.Logger) (report.Store, error) {
	if cfg.Report.CanUseS3() {
		s3Store, err := report.NewS3Store(cfg.Report)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize report s3 store: %w", err)
		}
		log.Info("report store: s3", "bucket", cfg.Report.Bucket, "endpoint", cfg.Report.Endpoint)
		return s3Store, nil
	}
	if cfg.Report.Enabled {
		log.Warn("report store: using in-memory fallback (s3 config incomplete)")
	}
	return report.NewMemoryStore(), nil
}
