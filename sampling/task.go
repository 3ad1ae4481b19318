package sampling

import (
	"fmt"

	"github.com/qubera-team/qubera-client/core"
	"github.com/qubera-team/qubera-client/device"
	"github.com/qubera-team/qubera-client/program"
	"go.uber.org/zap"
)

const SAMPLING_TASK = core.SAMPLING_TASK

// SamplingTask is a shot-based execution: the program runs Shots times and
// the result is a counts histogram plus any shot-compatible result pragmas.
type SamplingTask struct {
	taskData    *core.TaskData
	taskContext *core.TaskContext
}

func (t *SamplingTask) New(td *core.TaskData, tc *core.TaskContext) core.Task {
	return &SamplingTask{
		taskData:    td,
		taskContext: tc,
	}
}

func (t *SamplingTask) Prepare() {
	if err := t.prepareImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to prepare a task(%s). Reason:%s",
			t.TaskData().ID, err.Error()))
		core.SetFailureWithError(t, err)
		return
	}
	return
}

func (t *SamplingTask) prepareImpl() (err error) {
	err = nil
	td := t.TaskData()
	summary := program.Inspect(td.Program)
	if summary.NeedsZeroShots() {
		return fmt.Errorf(
			"program requests exact simulator quantities, use a simulation task with zero shots")
	}
	if summary.HasNoise() {
		return fmt.Errorf("noise channels are only executed by simulation tasks")
	}

	di, err := core.GetSystemComponents().ResolveDeviceInfo(td.DeviceID)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to resolve device(%s) for a task(%s). Reason:%s",
			td.DeviceID, td.ID, err.Error()))
		return
	}
	if deviceCheckDisabled() {
		zap.L().Debug(fmt.Sprintf("skip the device check of a task(%s)", td.ID))
		return
	}
	return device.CheckProgram(di, summary, td.DisableRewiring)
}

func (t *SamplingTask) Submit() {
	td := t.TaskData()
	if err := core.SubmitTaskData(td); err != nil {
		zap.L().Error(fmt.Sprintf("failed to submit a task(%s). Reason:%s", td.ID, err.Error()))
		core.SetFailureWithError(t, err)
		return
	}
	zap.L().Debug(fmt.Sprintf("finished to submit a task(%s)/status:%s", td.ID, td.Status))
}

func (t *SamplingTask) Refresh() {
	td := t.TaskData()
	if err := core.RefreshTaskData(td); err != nil {
		zap.L().Info(fmt.Sprintf("failed to refresh a task(%s). Reason:%s", td.ID, err.Error()))
	}
}

func (t *SamplingTask) Fetch() {
	td := t.TaskData()
	if err := core.FetchTaskData(td); err != nil {
		zap.L().Error(fmt.Sprintf("failed to fetch the result of a task(%s). Reason:%s",
			td.ID, err.Error()))
		core.SetFailureWithErrorToTaskData(td, err)
	}
}

func (t *SamplingTask) IsTerminal() bool {
	return t.TaskData().Status.IsTerminal()
}

func (t *SamplingTask) TaskData() *core.TaskData {
	return t.taskData
}

func (t *SamplingTask) TaskType() string {
	return SAMPLING_TASK
}

func (t *SamplingTask) TaskContext() *core.TaskContext {
	return t.taskContext
}

func (t *SamplingTask) Clone() core.Task {
	cloned := &SamplingTask{
		taskData:    t.taskData.Clone(),
		taskContext: t.taskContext,
	}
	return cloned
}

func deviceCheckDisabled() bool {
	return core.CurrentInfo != nil && core.CurrentInfo.Conf.DisableDeviceCheck
}
