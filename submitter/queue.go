package submitter

import (
	"context"
	"fmt"

	conq "github.com/enriquebris/goconcurrentqueue"
	"github.com/qubera-team/qubera-client/core"
	"go.uber.org/zap"
)

type queueChan chan *taskInSubmitter

type fifo interface {
	Enqueue(*taskInSubmitter) error
	Dequeue() (*taskInSubmitter, error)
	DequeueOrWaitForNextElementContext(context.Context) (*taskInSubmitter, error)
	Get(index int) (*taskInSubmitter, error)
	GetLen() int
	Remove(index int) error
}

type conqFIFO struct {
	conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		FIFO: *conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(ts *taskInSubmitter) error {
	return c.FIFO.Enqueue(ts)
}

func (c *conqFIFO) Dequeue() (*taskInSubmitter, error) {
	tmp, err := c.FIFO.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*taskInSubmitter), nil
}

func (c *conqFIFO) DequeueOrWaitForNextElementContext(ctx context.Context) (*taskInSubmitter, error) {
	tmp, err := c.FIFO.DequeueOrWaitForNextElementContext(ctx)
	if err != nil {
		return nil, err
	}
	return tmp.(*taskInSubmitter), nil
}

func (c *conqFIFO) Get(index int) (*taskInSubmitter, error) {
	tmp, err := c.FIFO.Get(index)
	if err != nil {
		return nil, err
	}
	return tmp.(*taskInSubmitter), nil
}

func (c *conqFIFO) GetLen() int {
	return c.FIFO.GetLen()
}

func (c *conqFIFO) Remove(index int) error {
	return c.FIFO.Remove(index)
}

type submissionQueue struct {
	fifo            fifo
	maxSize         int
	refillThreshold int
	queueChan       queueChan
	cancelChan      chan struct{}
}

func (n *submissionQueue) Setup(conf *core.Conf) error {
	n.refillThreshold = conf.QueueRefillThr
	n.maxSize = conf.QueueMaxSize
	n.fifo = newConqFIFO()
	n.queueChan = make(queueChan)
	n.cancelChan = make(chan struct{})
	go func() {
		defer close(n.cancelChan)
		for {
			var ts *taskInSubmitter
			select {
			case <-n.cancelChan:
				return
			case ts = <-n.queueChan:
			}
			td := ts.task.TaskData()
			if n.maxSize <= n.fifo.GetLen() {
				zap.L().Info(fmt.Sprintf("Failed to put %s. Submission queue is full.", td.ID))
				core.SetFailureWithErrorToTaskData(td,
					fmt.Errorf("submission queue is full (max %d)", n.maxSize))
				ts.finished.Done()
				continue
			}
			zap.L().Debug(fmt.Sprintf("Putting %s to the submission queue", td.ID))
			err := n.fifo.Enqueue(ts)
			if err != nil {
				zap.L().Error(
					fmt.Sprintf("Failed to put %s to the submission queue. Reason:%s", td.ID, err))
				core.SetFailureWithErrorToTaskData(td, err)
				ts.finished.Done()
			}
		}
	}()
	return nil
}

func (n *submissionQueue) TearDown() {
	n.cancelChan <- struct{}{}
}

func (n *submissionQueue) Dequeue() (ts *taskInSubmitter, err error) {
	ts, err = n.fifo.Dequeue()
	if err != nil {
		zap.L().Debug("no task in the submission queue.", zap.Error(err))
		return
	}
	zap.L().Debug(fmt.Sprintf("Dequeued task:%s", ts.task.TaskData().ID))
	return
}

// DequeueOrWait blocks on an empty queue until the next element arrives or
// ctx is cancelled.
func (n *submissionQueue) DequeueOrWait(ctx context.Context) (ts *taskInSubmitter, err error) {
	ts, err = n.fifo.DequeueOrWaitForNextElementContext(ctx)
	if err != nil {
		zap.L().Debug("no task in the submission queue.", zap.Error(err))
		return
	}
	zap.L().Debug(fmt.Sprintf("Dequeued task:%s", ts.task.TaskData().ID))
	return
}

func (n *submissionQueue) Delete(taskID string) error {
	zap.L().Debug(fmt.Sprintf("deleting %s from the submission queue", taskID))
	idx, err := n.getIdx(taskID)
	if err != nil {
		zap.L().Info(fmt.Sprintf("Failed to Delete %s. Reason:%s", taskID, err))
		return err
	}
	if err := n.fifo.Remove(idx); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to remove idx:%d. Reason:%s", idx, err))
		return err
	}
	return nil
}

func (n *submissionQueue) IsOverRefillThreshold() bool {
	return n.refillThreshold <= n.fifo.GetLen()
}

func (n *submissionQueue) GetCurrentSize() int {
	return n.fifo.GetLen()
}

func (n *submissionQueue) getIdx(taskID string) (int, error) {
	for i := 0; i < n.fifo.GetLen(); i++ {
		ts, err := n.fifo.Get(i)
		if err == nil {
			if ts.task.TaskData().ID == taskID {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("No entry")
}
