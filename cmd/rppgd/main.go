package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tacusci/logging/v2"
	"github.com/takama/daemon"
	"github.com/tauraamui/rppgtracker/pkg/config"
	"github.com/tauraamui/rppgtracker/pkg/configdef"
	db "github.com/tauraamui/rppgtracker/pkg/database"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/rppgtracker/pkg/process"
	"gocv.io/x/gocv"
)

const (
	name        = "rppg_tracker"
	description = "rPPG tracker which measures pulse waveforms from a camera feed"
)

type Service struct {
	daemon.Daemon
}

// Setup writes the default config and creates the session database.
func (service *Service) Setup() (string, error) {
	log.Info("Setting up rppgtracker service...")

	err := config.DefaultCreator().Create()
	if err != nil {
		if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
			return "", err
		}
		log.Error(err.Error())
	}

	err = db.Setup()
	if err != nil {
		if !errors.Is(err, db.ErrDBAlreadyExists) {
			return "", err
		}
		log.Error(err.Error())
	}

	return "Setup successful...", nil
}

func (service *Service) RemoveSetup() (string, error) {
	log.Info("Removing setup for rppgtracker service...")
	if err := db.Destroy(); err != nil {
		log.Error("unable to delete database file: %s", err.Error())
	}

	if err := config.DefaultDestroyer().Destroy(); err != nil {
		log.Error("unable to delete config file: %s", err.Error())
	}

	return "Removing setup successful...", nil
}

func (service *Service) Manage() (string, error) {
	usage := "Usage: rppgd setup | remove-setup | install | remove | start | stop | status"

	if len(os.Args) > 1 {
		command := os.Args[1]
		switch command {
		case "setup":
			return service.Setup()
		case "remove-setup":
			return service.RemoveSetup()
		case "install":
			return service.Install()
		case "remove":
			return service.Remove()
		case "start":
			return service.Start()
		case "stop":
			return service.Stop()
		case "status":
			return service.Status()
		default:
			return usage, nil
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	log.Info("Starting rPPG tracker...")

	values, err := config.DefaultResolver().Resolve()
	if err != nil {
		return "", err
	}
	if values.Debug {
		log.SetLevel("debug")
	}

	ctx, cancelStartup := context.WithCancel(context.Background())
	defer cancelStartup()

	go func() {
		killSignal := <-interrupt
		fmt.Print("\r")
		log.Error("Received signal: %s", killSignal)
		cancelStartup()
	}()

	sess, err := newRun(ctx, values)
	if err != nil {
		return "", err
	}
	defer sess.close()

	proc := process.New(process.Settings{
		WaitForShutdownMsg: "Stopping rPPG session...",
		Process:            process.RunSession(sess.session, sess.finish),
	})
	proc.Start()

	if values.RetainDays > 0 {
		pruner := process.New(process.Settings{
			WaitForShutdownMsg: "Stopping output pruning...",
			Process:            process.PruneOutput(values.OutputDir, time.Duration(values.RetainDays)*24*time.Hour, time.Hour),
		})
		pruner.Start()
		defer func() {
			pruner.Stop()
			pruner.Wait()
		}()
	}

	select {
	case <-ctx.Done():
		proc.Stop()
		proc.Wait()
	case <-proc.Done():
	}

	if values.Debug {
		var b bytes.Buffer
		gocv.MatProfile.WriteTo(&b, 1)
		fmt.Print(b.String())
	}

	if sess.err != nil {
		return "", sess.err
	}
	return "Session complete... BYE! 👋", nil
}

func init() {
	log.SetLevel(os.Getenv("RPPG_LOGGING_LEVEL"))
}

func main() {
	daemonType := daemon.SystemDaemon
	if runtime.GOOS == "darwin" {
		daemonType = daemon.UserAgent
	}

	srv, err := daemon.New(name, description, daemonType)
	if err != nil {
		logging.Error(err.Error()) //nolint
		os.Exit(1)
	}

	service := &Service{srv}
	status, err := service.Manage()
	if err != nil {
		logging.Error(err.Error()) //nolint
		os.Exit(1)
	}

	logging.Info(status) //nolint
}
