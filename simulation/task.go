package simulation

import (
	"fmt"

	"github.com/qubera-team/qubera-client/core"
	"github.com/qubera-team/qubera-client/device"
	"github.com/qubera-team/qubera-client/program"
	"go.uber.org/zap"
)

const SIMULATION_TASK = "simulation"

// SimulationTask targets the managed simulators. It is the only task type
// that ships noise channels and exact result types (state vector, amplitude,
// density matrix); all of them execute remotely.
type SimulationTask struct {
	taskData    *core.TaskData
	taskContext *core.TaskContext
}

func (t *SimulationTask) New(td *core.TaskData, tc *core.TaskContext) core.Task {
	return &SimulationTask{
		taskData:    td,
		taskContext: tc,
	}
}

func (t *SimulationTask) Prepare() {
	if err := t.prepareImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to prepare a task(%s). Reason:%s",
			t.TaskData().ID, err.Error()))
		core.SetFailureWithError(t, err)
		return
	}
	return
}

func (t *SimulationTask) prepareImpl() (err error) {
	err = nil
	td := t.TaskData()
	summary := program.Inspect(td.Program)
	if summary.NeedsZeroShots() && td.Shots > 0 {
		return fmt.Errorf(
			"exact simulator quantities need shots to be 0, got %d", td.Shots)
	}
	if summary.NeedsShots() && td.Shots == 0 {
		return fmt.Errorf("the sample result type needs shots to be greater than 0")
	}
	if summary.NeedsZeroShots() && summary.NeedsShots() {
		return fmt.Errorf("exact and shot-based result types cannot be mixed in one program")
	}

	di, err := core.GetSystemComponents().ResolveDeviceInfo(td.DeviceID)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to resolve device(%s) for a task(%s). Reason:%s",
			td.DeviceID, td.ID, err.Error()))
		return
	}
	if err = checkParadigm(di, summary); err != nil {
		return
	}
	if deviceCheckDisabled() {
		zap.L().Debug(fmt.Sprintf("skip the device check of a task(%s)", td.ID))
		return
	}
	return device.CheckProgram(di, summary, td.DisableRewiring)
}

// checkParadigm maps program features to the simulator paradigms that can
// execute them. The service enforces the same rules; failing here avoids a
// rejected submission.
func checkParadigm(di *core.DeviceInfo, s *program.Summary) error {
	switch di.Paradigm {
	case core.ParadigmSVSimulator, core.ParadigmDMSimulator:
	default:
		return fmt.Errorf("device %s is not a simulator (paradigm %s)", di.DeviceID, di.Paradigm)
	}
	if s.HasNoise() && di.Paradigm != core.ParadigmDMSimulator {
		return fmt.Errorf("noise channels need a density-matrix simulator, device %s is %s",
			di.DeviceID, di.Paradigm)
	}
	if s.HasResultType(program.ResultDensityMatrix) && di.Paradigm != core.ParadigmDMSimulator {
		return fmt.Errorf("the density_matrix result type needs a density-matrix simulator")
	}
	svOnly := s.HasResultType(program.ResultStateVector) || s.HasResultType(program.ResultAmplitude)
	if svOnly && di.Paradigm != core.ParadigmSVSimulator {
		return fmt.Errorf("state_vector and amplitude result types need a state-vector simulator")
	}
	return nil
}

func (t *SimulationTask) Submit() {
	td := t.TaskData()
	if err := core.SubmitTaskData(td); err != nil {
		zap.L().Error(fmt.Sprintf("failed to submit a task(%s). Reason:%s", td.ID, err.Error()))
		core.SetFailureWithError(t, err)
		return
	}
	zap.L().Debug(fmt.Sprintf("finished to submit a task(%s)/status:%s", td.ID, td.Status))
}

func (t *SimulationTask) Refresh() {
	td := t.TaskData()
	if err := core.RefreshTaskData(td); err != nil {
		zap.L().Info(fmt.Sprintf("failed to refresh a task(%s). Reason:%s", td.ID, err.Error()))
	}
}

func (t *SimulationTask) Fetch() {
	td := t.TaskData()
	if err := core.FetchTaskData(td); err != nil {
		zap.L().Error(fmt.Sprintf("failed to fetch the result of a task(%s). Reason:%s",
			td.ID, err.Error()))
		core.SetFailureWithErrorToTaskData(td, err)
	}
}

func (t *SimulationTask) IsTerminal() bool {
	return t.TaskData().Status.IsTerminal()
}

func (t *SimulationTask) TaskData() *core.TaskData {
	return t.taskData
}

func (t *SimulationTask) TaskType() string {
	return SIMULATION_TASK
}

func (t *SimulationTask) TaskContext() *core.TaskContext {
	return t.taskContext
}

func (t *SimulationTask) Clone() core.Task {
	cloned := &SimulationTask{
		taskData:    t.taskData.Clone(),
		taskContext: t.taskContext,
	}
	return cloned
}

func deviceCheckDisabled() bool {
	return core.CurrentInfo != nil && core.CurrentInfo.Conf.DisableDeviceCheck
}
