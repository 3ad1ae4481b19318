package awaiter

import (
	"fmt"
	"reflect"
	"time"

	"github.com/qubera-team/qubera-client/core"
	"go.uber.org/zap"
)

type state int

const AwaiterTaskName = "awaiter"

const (
	POLLING state = iota
	SUB_IDLE
	IDLE
)

const (
	DEFAULT_NORMAL_PERIOD = time.Duration(10) * time.Second
	DEFAULT_IDLE_PERIOD   = time.Duration(60) * time.Second
	DEFAULT_MAX_RETRY     = 3
)

func (s state) String() string {
	switch s {
	case POLLING:
		return "POLLING"
	case SUB_IDLE:
		return "SUB_IDLE"
	case IDLE:
		return "IDLE"
	default:
		return "UNKNOWN"
	}
}

// Awaiter is the periodic task that drives every pending submission to its
// terminal status: refresh the remote status, fetch the result when the
// remote side is done, then charge the tracker. With nothing pending it
// backs off to the idle period.
type Awaiter struct {
	NormalPeriod time.Duration `toml:"normal_period"`
	IdlePeriod   time.Duration `toml:"idle_period"`
	MaxRetry     int           `toml:"max_retry"`

	currentPeriod time.Duration
	noTasksCount  int
	state         state

	sysCom *core.SystemComponents
}

func (a *Awaiter) GetEmptyParams() interface{} {
	return &Awaiter{}
}

func (a *Awaiter) SetParams(params interface{}) error {
	if params == nil {
		msg := "no params for awaiter"
		zap.L().Debug(msg)
		return nil
	}
	pp, ok := params.(map[string]interface{})
	if !ok {
		msg := fmt.Errorf("failed to set params for awaiter/params: %s", params)
		zap.L().Error(msg.Error())
		return msg
	}
	zap.L().Debug(fmt.Sprintf("Set params for awaiter: %v", pp))
	setField[int]("max_retry", &a.MaxRetry, pp, DEFAULT_MAX_RETRY)
	setDurationField("normal_period", &a.NormalPeriod, pp, DEFAULT_NORMAL_PERIOD)
	setDurationField("idle_period", &a.IdlePeriod, pp, DEFAULT_IDLE_PERIOD)
	return nil
}

func setField[T string | int | bool](key string, target *T, pp map[string]interface{}, defaultVal T) {
	if v, ok := pp[key]; ok && !reflect.ValueOf(v).IsZero() {
		*target = v.(T)
		return
	}
	zap.L().Debug(fmt.Sprintf("Set default value for %s: %v", key, defaultVal))
	*target = defaultVal
}

func setDurationField(key string, target *time.Duration, pp map[string]interface{}, defaultVal time.Duration) {
	if v, ok := pp[key]; ok && !reflect.ValueOf(v).IsZero() {
		dur, err := time.ParseDuration(v.(string))
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to parse duration for %s/reason:%s", key, err))
		}
		*target = dur
		return
	}
	zap.L().Debug(fmt.Sprintf("Set default value for %s: %v", key, defaultVal))
	*target = defaultVal
}

func (a *Awaiter) RequirePeriodUpdate() (bool, time.Duration) {
	return true, a.currentPeriod
}

func (a *Awaiter) Setup() error {
	if a.NormalPeriod == 0 {
		a.NormalPeriod = DEFAULT_NORMAL_PERIOD
	}
	if a.IdlePeriod == 0 {
		a.IdlePeriod = DEFAULT_IDLE_PERIOD
	}
	if a.MaxRetry == 0 {
		a.MaxRetry = DEFAULT_MAX_RETRY
	}
	a.currentPeriod = a.NormalPeriod
	a.noTasksCount = 0
	a.state = POLLING
	a.sysCom = core.GetSystemComponents()
	return nil
}

func (a *Awaiter) Task() {
	zap.L().Debug("Awaiter is refreshing pending tasks")
	tasksNum, err := a.refreshPending()
	if err != nil || tasksNum == 0 {
		if err != nil {
			zap.L().Info(fmt.Sprintf("Failed to refresh tasks. NoTasksCount:%d, Reason:%s",
				a.noTasksCount, err))
		} else {
			zap.L().Debug(fmt.Sprintf("No pending tasks. NoTasksCount:%d", a.noTasksCount))
		}
		switch a.state {
		case POLLING:
			a.noTasksCount = 1
			a.updateState(SUB_IDLE)
			zap.L().Debug(fmt.Sprintf("Transition to sub idle mode. Retry after %s", a.NormalPeriod))
			return
		case SUB_IDLE:
			a.noTasksCount++
			if a.noTasksCount < a.MaxRetry {
				zap.L().Debug(fmt.Sprintf("Retry after %s", a.NormalPeriod))
			} else {
				zap.L().Info("Reached max retry. Transition to idle mode")
				a.noTasksCount = 0
				a.updateState(IDLE)
				a.currentPeriod = a.IdlePeriod
			}
		case IDLE:
			zap.L().Debug(fmt.Sprintf("Already in idle mode. Retry after idle period %s", a.IdlePeriod))
		default:
			zap.L().Error(fmt.Sprintf("Unknown state %d", int(a.state)))
		}
	} else { // refreshed tasks
		switch a.state {
		case POLLING:
			zap.L().Debug("keep polling")
		case SUB_IDLE:
			zap.L().Info("Transition to polling mode from sub_idle state")
			a.updateState(POLLING)
			a.noTasksCount = 0
		case IDLE:
			zap.L().Info("Transition to polling mode from idle state")
			a.currentPeriod = a.NormalPeriod
			a.updateState(POLLING)
			a.noTasksCount = 0
		default:
			zap.L().Error(fmt.Sprintf("Unknown state %d", int(a.state)))
		}
	}
}

func (a *Awaiter) Cleanup() {
	zap.L().Info("Awaiter is cleaning up")
}

// refreshPending walks the pending tasks once. It returns how many tasks it
// touched so the state machine can back off when the store drains.
func (a *Awaiter) refreshPending() (int, error) {
	var pending []core.Task
	err := a.sysCom.Invoke(
		func(s core.TaskStore) error {
			var pendingErr error
			pending, pendingErr = s.Pending()
			return pendingErr
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to list pending tasks. Reason:%s", err))
		return 0, err
	}
	zap.L().Debug(fmt.Sprintf("refreshing %d tasks", len(pending)))
	refreshed := 0
	for _, task := range pending {
		td := task.TaskData()
		before := td.Status
		task.Refresh()
		if task.IsTerminal() {
			zap.L().Debug(fmt.Sprintf("Task(%s) reached %s, fetching the result", td.ID, td.Status))
			task.Fetch()
			a.charge(td)
		}
		if td.Status != before {
			task.TaskContext().StoreChan <- task.Clone()
		}
		refreshed++
	}
	return refreshed, nil
}

func (a *Awaiter) charge(td *core.TaskData) {
	di, err := a.sysCom.ResolveDeviceInfo(td.DeviceID)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to resolve device(%s) for charging a task(%s). Reason:%s",
			td.DeviceID, td.ID, err.Error()))
		return
	}
	err = a.sysCom.Invoke(
		func(t core.Tracker) error {
			t.Charge(td, di)
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to charge a task(%s). Reason:%s", td.ID, err.Error()))
	}
}

func (a *Awaiter) updateState(newState state) {
	a.state = newState
}
