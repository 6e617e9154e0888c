package process_test

import (
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/rppgtracker/pkg/process"
)

var pruneAt = time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)

func outputTree(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, dir := range []string{"/out/2026-10-01", "/out/2026-10-08", "/out/2026-10-14", "/out/2026-10-16", "/out/notes"} {
		if err := fs.MkdirAll(dir, os.ModeDir|os.ModePerm); err != nil {
			t.Fatal(err)
		}
	}
	if err := afero.WriteFile(fs, "/out/2026-10-01/plot-green.png", []byte{0x89}, os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/out/2020-01-01", []byte("not a dir"), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	return fs
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatal(err)
	}
	return ok
}

func TestPruneRemovesOnlyExpiredDayDirectories(t *testing.T) {
	is := is.New(t)
	fs := outputTree(t)
	defer process.OverloadFS(fs)()

	removed, err := process.Prune("/out", pruneAt, 7*24*time.Hour)
	is.NoErr(err)
	is.Equal(removed, 2)

	is.True(!exists(t, fs, "/out/2026-10-01"))
	is.True(!exists(t, fs, "/out/2026-10-08"))
	is.True(exists(t, fs, "/out/2026-10-14"))
	is.True(exists(t, fs, "/out/2026-10-16"))
	is.True(exists(t, fs, "/out/notes"))
	is.True(exists(t, fs, "/out/2020-01-01"))
}

func TestPruneMissingRootIsNotAnError(t *testing.T) {
	is := is.New(t)
	defer process.OverloadFS(afero.NewMemMapFs())()

	removed, err := process.Prune("/nowhere", pruneAt, time.Hour)
	is.NoErr(err)
	is.Equal(removed, 0)
}

func TestPruneOutputRunsBeforeStopping(t *testing.T) {
	is := is.New(t)
	logging.CurrentLoggingLevel = logging.SilentLevel
	defer func() { logging.CurrentLoggingLevel = logging.WarnLevel }()

	fs := outputTree(t)
	defer process.OverloadFS(fs)()
	defer process.OverloadNow(func() time.Time { return pruneAt })()

	proc := process.New(process.Settings{
		Process: process.PruneOutput("/out", 3*24*time.Hour, time.Hour),
	})
	proc.Start()
	proc.Stop()
	proc.Wait()

	is.True(!exists(t, fs, "/out/2026-10-08"))
	is.True(exists(t, fs, "/out/2026-10-14"))
}
