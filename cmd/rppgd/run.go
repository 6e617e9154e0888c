package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tauraamui/rppgtracker/pkg/configdef"
	db "github.com/tauraamui/rppgtracker/pkg/database"
	"github.com/tauraamui/rppgtracker/pkg/database/models"
	"github.com/tauraamui/rppgtracker/pkg/dataset"
	"github.com/tauraamui/rppgtracker/pkg/display"
	"github.com/tauraamui/rppgtracker/pkg/landmark"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/rppgtracker/pkg/plot"
	"github.com/tauraamui/rppgtracker/pkg/roi"
	"github.com/tauraamui/rppgtracker/pkg/signal"
	"github.com/tauraamui/rppgtracker/pkg/telemetry"
	"github.com/tauraamui/rppgtracker/pkg/tracker"
	"github.com/tauraamui/rppgtracker/pkg/video/videobackend"
	"github.com/tauraamui/rppgtracker/pkg/video/videoclip"
	"github.com/tauraamui/xerror"
	"golang.org/x/term"
)

const windowTitle = "rPPG Tracker"

// run holds one session and everything it has to release afterwards.
type run struct {
	values    configdef.Values
	session   *tracker.Session
	conn      videobackend.Connection
	display   display.Display
	recorder  videoclip.Writer
	publisher telemetry.Publisher
	err       error
}

func newRun(ctx context.Context, values configdef.Values) (*run, error) {
	backendName := values.VideoBackend
	if env := os.Getenv("RPPG_VIDEO_BACKEND"); len(env) > 0 {
		backendName = env
	}
	backend := videobackend.Resolve(backendName)

	log.Info("Connecting to frame source: [%s]...", values.Source)
	conn, err := backend.Connect(ctx, values.Source)
	if err != nil {
		return nil, xerror.Errorf("unable to connect to frame source %s: %w", values.Source, err)
	}

	faces, err := landmark.Resolve(values.Detector.Type, values.Detector.CascadePath, values.Detector.MinSize)
	if err != nil {
		conn.Close()
		return nil, err
	}

	id := uuid.NewString()
	outputDir := filepath.Join(values.OutputDir, videoclip.Timestamp().Format(videoclip.DATE_FORMAT))
	pairs, err := buildPairs(values.Pairs, plot.ToDir(outputDir, id))
	if err != nil {
		conn.Close()
		return nil, err
	}

	r := &run{values: values, conn: conn, display: display.Headless(), publisher: telemetry.Noop()}
	if values.Display {
		r.display = display.Window(windowTitle)
	}
	if values.RecordROI {
		r.recorder = backend.NewWriter(videoclip.FileName(values.OutputDir, id), conn.FPS())
	}
	if values.MQTT.Enabled {
		publisher, err := telemetry.MQTT(telemetry.Settings{
			Broker:   values.MQTT.Broker,
			Topic:    values.MQTT.Topic,
			ClientID: values.MQTT.ClientID,
			QoS:      byte(values.MQTT.QoS),
		})
		if err != nil {
			log.Warn("Live readings will not be published: %v", err)
		} else {
			r.publisher = publisher
		}
	}

	opts := []tracker.Option{
		tracker.WithID(id),
		tracker.WithDisplay(r.display),
		tracker.WithPublisher(r.publisher),
	}
	if r.recorder != nil {
		opts = append(opts, tracker.WithRecorder(r.recorder))
	}
	if term.IsTerminal(int(os.Stdout.Fd())) && !log.IsSilent() {
		opts = append(opts, tracker.WithProgress(printProgress))
	}

	r.session = tracker.New(conn, faces, pairs, tracker.Settings{
		TimeLimit:     values.TimeLimit,
		SkipCount:     values.SkipCount,
		Budget:        values.Budget,
		WindowSeconds: values.WindowSeconds,
		LiveInterval:  values.LiveInterval,
		QuitKey:       values.Key(),
		Plot:          values.Plot,
	}, opts...)
	return r, nil
}

func buildPairs(configured []configdef.Pair, plotter signal.Plotter) ([]tracker.Pair, error) {
	pairs := make([]tracker.Pair, 0, len(configured))
	for _, p := range configured {
		extractor, err := roi.Resolve(p.Extractor)
		if err != nil {
			return nil, err
		}
		strategy, err := signal.Resolve(p.Strategy, signal.WithPlotter(plotter))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, tracker.Pair{Extractor: extractor, Strategy: strategy})
	}
	return pairs, nil
}

func printProgress(p tracker.Progress) {
	if p.State == tracker.Stopped {
		fmt.Print("\n")
		return
	}
	pulse := "--"
	if p.PulseRate > 0 {
		pulse = fmt.Sprintf("%.0f", p.PulseRate)
	}
	fmt.Printf("\r[%s] %d/%d frames, %d processed, pulse %s bpm   ", windowTitle, p.Counted, p.Budget, p.Processed, pulse)
}

// finish stores the session once the tracker has stopped.
func (r *run) finish(report tracker.Report, err error) {
	if err != nil {
		log.Error(err.Error())
		r.err = err
	}

	record, err := buildRecord(r.values, report, r.session.Pairs())
	if err != nil {
		log.Warn("Unable to prepare session record: %v", err)
		return
	}

	conn, err := db.Connect()
	if err != nil {
		log.Warn("Session results not stored: %v", err)
		return
	}
	if err := db.Save(conn, &record); err != nil {
		log.Error("Unable to store session results: %v", err)
		return
	}
	log.Info("Stored session [%s] with %d results", report.Session, len(record.Results))
}

func buildRecord(values configdef.Values, report tracker.Report, pairs []tracker.Pair) (db.Record, error) {
	record := db.Record{
		Session: models.Session{
			UUID:       report.Session,
			Source:     values.Source,
			FrameRate:  report.FrameRate,
			Budget:     report.Budget,
			Ticks:      report.Ticks,
			Processed:  report.Processed,
			StopReason: report.Reason.String(),
			StartedAt:  report.Started,
			StoppedAt:  report.Stopped,
		},
	}

	for i, result := range report.Results {
		if result.Err != nil {
			continue
		}
		row := models.StrategyResult{
			Position:   i,
			Extractor:  pairs[i].Extractor.Name(),
			Strategy:   pairs[i].Strategy.Name(),
			Samples:    result.Summary.Samples,
			Windows:    result.Summary.Windows,
			WindowSize: result.Summary.WindowSize,
			PulseRate:  result.Summary.PulseRate,
		}
		if err := row.SetWaveform(result.Summary.Waveform); err != nil {
			return db.Record{}, err
		}
		record.Results = append(record.Results, row)
	}

	if values.Dataset.Enabled && len(pairs) > 0 && pairs[0].Strategy.Len() > 0 {
		clip, err := dataset.NewClip(values.Dataset.Split, dataset.Label(values.Dataset.Label), pairs[0].Strategy.Samples(), report.FrameRate)
		if err != nil {
			return db.Record{}, err
		}
		rows := make([][4]float64, len(clip.Rows))
		for i, r := range clip.Rows {
			rows[i] = r
		}
		series := &models.Series{Split: clip.Split, Label: int(clip.Label), FrameRate: clip.FrameRate}
		if err := series.SetRows(rows); err != nil {
			return db.Record{}, err
		}
		record.Series = series
	}
	return record, nil
}

func (r *run) close() {
	if r.recorder != nil {
		if err := r.recorder.Close(); err != nil {
			log.Warn("Unable to finish ROI recording: %v", err)
		}
	}
	r.publisher.Close()
	if err := r.display.Close(); err != nil {
		log.Warn("Unable to close display: %v", err)
	}
	if err := r.conn.Close(); err != nil {
		log.Warn("Unable to close frame source: %v", err)
	}
}
