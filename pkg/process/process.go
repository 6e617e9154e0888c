// Package process runs long lived work in the background with a uniform
// start/stop/wait lifecycle.
package process

import (
	"context"
	"sync"

	"github.com/tauraamui/rppgtracker/pkg/log"
)

type Process interface {
	Setup() Process
	Start()
	Stop()
	Wait()
	// Done is closed once every goroutine the process started has returned.
	Done() <-chan struct{}
}

type Settings struct {
	WaitForShutdownMsg string
	Process            func(context.Context) []chan interface{}
}

func New(settings Settings) Process {
	return &process{
		waitForShutdownMsg: settings.WaitForShutdownMsg,
		process:            settings.Process,
		done:               make(chan struct{}),
	}
}

type process struct {
	process            func(context.Context) []chan interface{}
	waitForShutdownMsg string
	canceller          context.CancelFunc
	signals            []chan interface{}
	done               chan struct{}
	doneOnce           sync.Once
}

func (p *process) logShutdown() {
	if len(p.waitForShutdownMsg) > 0 {
		log.Info(p.waitForShutdownMsg)
	}
}

func (p *process) Setup() Process { return p }

func (p *process) Start() {
	ctx, canceller := context.WithCancel(context.Background())
	p.canceller = canceller
	p.signals = append(p.signals, p.process(ctx)...)
	signals := p.signals
	go func() {
		for _, sig := range signals {
			<-sig
		}
		p.doneOnce.Do(func() { close(p.done) })
	}()
}

func (p *process) Stop() {
	p.logShutdown()
	if p.canceller != nil {
		p.canceller()
	}
}

func (p *process) Wait() {
	<-p.done
}

func (p *process) Done() <-chan struct{} {
	return p.done
}
