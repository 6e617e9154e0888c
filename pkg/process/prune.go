package process

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/rppgtracker/pkg/video/videoclip"
	"github.com/tauraamui/xerror"
)

var fs = afero.NewOsFs()

var now = func() time.Time {
	return time.Now()
}

// PruneOutput deletes the day directories under root holding plots and ROI
// clips once they are older than maxAge. It runs once straight away and then
// every interval until cancelled.
func PruneOutput(root string, maxAge, interval time.Duration) func(context.Context) []chan interface{} {
	return func(cancel context.Context) []chan interface{} {
		log.Info("Pruning session output older than %s under %s", maxAge, root)
		stopping := make(chan interface{})
		go func(cancel context.Context, stopping chan interface{}) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
		procLoop:
			for {
				if _, err := prune(root, now(), maxAge); err != nil {
					log.Error("Unable to prune session output: %v", err)
				}
				select {
				case <-cancel.Done():
					close(stopping)
					break procLoop
				case <-ticker.C:
				}
			}
		}(cancel, stopping)
		return []chan interface{}{stopping}
	}
}

// prune removes each dated directory whose whole day ended before the
// cutoff. Anything not named like a date is left alone.
func prune(root string, at time.Time, maxAge time.Duration) (int, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, xerror.Errorf("unable to list output directory: %w", err)
	}

	cutoff := at.Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		day, err := time.ParseInLocation(videoclip.DATE_FORMAT, entry.Name(), at.Location())
		if err != nil {
			continue
		}
		if !day.AddDate(0, 0, 1).Before(cutoff) {
			continue
		}

		path := filepath.Join(root, entry.Name())
		if err := fs.RemoveAll(path); err != nil {
			return removed, xerror.Errorf("unable to delete %s: %w", path, err)
		}
		log.Debug("Deleted old session output %s", path)
		removed++
	}
	return removed, nil
}
