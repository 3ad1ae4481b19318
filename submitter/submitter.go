package submitter

import (
	"context"
	"fmt"
	"sync"

	"github.com/qubera-team/qubera-client/core"
	"go.uber.org/zap"
)

// NormalSubmitter serializes submissions through a FIFO so a notebook firing
// many tasks at once cannot flood the service. Prepare runs on the caller's
// goroutine, Submit on the single worker. TearDown cancels ctx to stop the
// worker and the queue intake.
type NormalSubmitter struct {
	queue  *submissionQueue
	ctx    context.Context
	cancel context.CancelFunc
}

type taskInSubmitter struct {
	task     core.Task
	finished *sync.WaitGroup
}

func (n *NormalSubmitter) Setup(conf *core.Conf) error {
	n.ctx, n.cancel = context.WithCancel(context.Background())
	n.queue = &submissionQueue{}
	return n.queue.Setup(conf)
}

func (n *NormalSubmitter) Start() error {
	go func() {
		for {
			zap.L().Debug("checking the submission queue...")
			ts, err := n.queue.DequeueOrWait(n.ctx)
			if err != nil {
				if n.ctx.Err() != nil {
					zap.L().Debug("stopping the submission worker")
					return
				}
				zap.L().Error(fmt.Sprintf("failed to get a task from the queue. Reason:%s", err))
				continue
			}
			tid := ts.task.TaskData().ID
			zap.L().Debug(fmt.Sprintf("submitting task:%s", tid))
			ts.task.Submit()
			zap.L().Debug(fmt.Sprintf("finished to submit task(%s), status:%s",
				ts.task.TaskData().ID, ts.task.TaskData().Status))
			ts.finished.Done()
		}
	}()
	return nil
}

func (n *NormalSubmitter) HandleTask(t core.Task) {
	zap.L().Debug(fmt.Sprintf("starting to handle task(%s) in %s",
		t.TaskData().ID, t.TaskData().Status))
	go func() {
		n.handleImpl(t)
	}()
}

// HandleTaskSync runs the handle flow on the caller's goroutine and returns
// once the task has gone through Prepare and Submit. The CLI uses this to
// print the service-assigned ID right after submission.
func (n *NormalSubmitter) HandleTaskSync(t core.Task) {
	n.handleImpl(t)
}

// HandleTaskForTest runs the handle flow and signals wg when the task has
// been recorded, so tests can wait deterministically.
func (n *NormalSubmitter) HandleTaskForTest(t core.Task, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()
		n.handleImpl(t)
	}()
}

func (n *NormalSubmitter) handleImpl(t core.Task) {
	tid := t.TaskData().ID
	zap.L().Debug(fmt.Sprintf("handling task(%s). start preparing", tid))
	t.Prepare()
	if t.IsTerminal() {
		// Validation failed locally; record and stop before any round trip.
		t.TaskContext().StoreChan <- t.Clone()
		zap.L().Debug(fmt.Sprintf("finished to handle task(%s) after preparing", tid))
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	ts := &taskInSubmitter{
		task:     t,
		finished: &wg,
	}
	n.queue.queueChan <- ts
	wg.Wait() // wait for submission
	t.TaskContext().StoreChan <- t.Clone()
	zap.L().Debug(fmt.Sprintf("finished to handle task(%s) with status:%s",
		t.TaskData().ID, t.TaskData().Status))
}

func (n *NormalSubmitter) TearDown() {
	n.cancel()
	n.queue.TearDown()
}

func (n *NormalSubmitter) GetCurrentQueueSize() int {
	return n.queue.GetCurrentSize()
}

func (n *NormalSubmitter) IsOverRefillThreshold() bool {
	return n.queue.IsOverRefillThreshold()
}
