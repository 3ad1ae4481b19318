package core

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"
)

var ErrorTaskIDConflict = errors.New("taskID is already used")
var taskManager *TaskManager

const SAMPLING_TASK = "sampling"

// Task is the client-side lifecycle of one remote execution request.
// Prepare renders and validates the program, Submit hands it to the cloud,
// Refresh polls the remote status once, Fetch pulls the result payload after
// the remote side reports a terminal status.
type Task interface {
	// Task Control
	New(*TaskData, *TaskContext) Task
	Prepare()
	Submit()
	Refresh()
	Fetch()
	IsTerminal() bool

	// Data Access
	TaskData() *TaskData // Get mutable TaskData
	TaskType() string
	TaskContext() *TaskContext
	Clone() Task
}

type TaskContext struct {
	*Channels
}

func NewTaskContext() (*TaskContext, error) {
	s := GetSystemComponents()
	if s == nil {
		return nil, fmt.Errorf("system components is not initialized")
	}
	c := s.Channels
	if c == nil {
		return nil, fmt.Errorf("channels is not initialized")
	}
	return &TaskContext{
		Channels: GetSystemComponents().Channels,
	}, nil
}

type TaskParam struct {
	TaskID          string
	DeviceID        string
	Program         string
	Shots           int
	DisableRewiring bool
	Tags            map[string]string
	TaskType        string
}

// InvalidTask carries a task whose type is not registered. It never reaches
// the cloud; the failure reason is already set in its TaskData.
type InvalidTask struct {
	taskData    *TaskData
	taskContext *TaskContext
}

func (t *InvalidTask) New(td *TaskData, tc *TaskContext) Task {
	return &InvalidTask{
		taskData:    td,
		taskContext: tc,
	}
}

func (t *InvalidTask) Prepare() {
	return
}

func (t *InvalidTask) Submit() {
	return
}

func (t *InvalidTask) Refresh() {
	return
}

func (t *InvalidTask) Fetch() {
	return
}

func (t *InvalidTask) IsTerminal() bool {
	return t.TaskData().Status.IsTerminal()
}

func (t *InvalidTask) TaskData() *TaskData {
	return t.taskData
}

func (t *InvalidTask) TaskType() string {
	// return the invalid task type itself
	return t.taskData.TaskType
}

func (t *InvalidTask) TaskContext() *TaskContext {
	return t.taskContext
}

func (t *InvalidTask) Clone() Task {
	cloned := &InvalidTask{
		taskData:    t.taskData.Clone(),
		taskContext: t.taskContext,
	}
	return cloned
}

func GetTask(id string) (task Task) {
	task = nil
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(t TaskStore) error {
			var getErr error
			task, getErr = t.Get(id)
			return getErr
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to find a task(%s)", id))
		return nil
	}
	return task
}

func DeleteTask(id string) bool {
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(t TaskStore) error {
			return t.Delete(id)
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to delete a task(%s)", id))
		return false
	}
	return true
}

// factory pattern
type TaskManager struct {
	acceptableTasks []Task //empty tasks
}

func (t *TaskManager) RegisterTask(tasks ...Task) error {
	for _, task := range tasks {
		// check if task is already registered
		for _, a := range t.acceptableTasks {
			if reflect.TypeOf(a) == reflect.TypeOf(task) {
				return fmt.Errorf("task:%s is already registered", task.TaskType())
			}
		}
		zap.L().Debug(fmt.Sprintf("registering task type %s", task.TaskType()))
		t.acceptableTasks = append(t.acceptableTasks, task)
	}
	return nil
}

func (t *TaskManager) AcceptableTaskTypes() []string {
	types := []string{}
	for _, task := range t.acceptableTasks {
		types = append(types, task.TaskType())
	}
	return types
}

func (t *TaskManager) NewTaskWithValidation(param *TaskParam, tc *TaskContext) (Task, error) {
	if param.TaskType == "" { // default task type
		param.TaskType = SAMPLING_TASK
	}
	if err := validateTaskParam(param); err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate task param. Reason:%s", err.Error()))
		return nil, err
	}
	return t.NewTask(param, tc)
}

func (t *TaskManager) NewTask(param *TaskParam, tc *TaskContext) (Task, error) {
	td := NewTaskData()
	td.ID = param.TaskID
	td.DeviceID = param.DeviceID
	td.Program = param.Program
	td.Shots = param.Shots
	td.DisableRewiring = param.DisableRewiring
	if param.Tags != nil {
		td.Tags = param.Tags
	}
	td.TaskType = param.TaskType
	return t.NewTaskFromTaskData(td, tc)
}

func (t *TaskManager) NewTaskFromTaskDataWithValidation(td *TaskData, tc *TaskContext) (Task, error) {
	if td.TaskType == "" { // default task type
		td.TaskType = SAMPLING_TASK
	}
	p := &TaskParam{
		TaskID:          td.ID,
		DeviceID:        td.DeviceID,
		Program:         td.Program,
		Shots:           td.Shots,
		DisableRewiring: td.DisableRewiring,
		Tags:            td.Tags,
		TaskType:        td.TaskType,
	}
	if err := validateTaskParam(p); err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate task data. Reason:%s", err.Error()))
		return nil, err
	}
	return t.NewTaskFromTaskData(td, tc)
}

func (t *TaskManager) NewTaskFromTaskData(td *TaskData, tc *TaskContext) (Task, error) {
	if td.TaskType == "" { // default task type
		td.TaskType = SAMPLING_TASK
	}
	zap.L().Debug(fmt.Sprintf("creating a task from task data. Task ID:%s, Task Type:%s", td.ID, td.TaskType))
	for _, a := range t.acceptableTasks {
		if a.TaskType() == td.TaskType {
			// create a new task instance
			typ := reflect.TypeOf(a)
			newInstance := reflect.New(typ).Elem().Interface()
			task := newInstance.(Task).New(td, tc)
			return task, nil
		}
	}
	return nil, fmt.Errorf("task type %s is not registered", td.TaskType)
}

func validateTaskParam(p *TaskParam) (err error) {
	err = nil
	if p.TaskID == "" {
		return fmt.Errorf("taskID is empty")
	}
	if p.DeviceID == "" {
		return fmt.Errorf("deviceID is empty/taskID:%s", p.TaskID)
	}
	if p.Program == "" {
		return fmt.Errorf("program is empty/taskID:%s", p.TaskID)
	}
	if p.Shots < 0 {
		msg := fmt.Sprintf("shots(%d) must not be negative", p.Shots)
		zap.L().Info(msg + fmt.Sprintf("/taskID:%s", p.TaskID))
		return errors.New(msg)
	}

	// Zero-shot submissions are validated per task type in Prepare.
	if p.TaskType == SAMPLING_TASK && p.Shots == 0 {
		msg := fmt.Sprintf("shots(%d) must be greater than 0 for sampling", p.Shots)
		zap.L().Info(msg + fmt.Sprintf("/taskID:%s", p.TaskID))
		return errors.New(msg)
	}

	di, err := GetSystemComponents().ResolveDeviceInfo(p.DeviceID)
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to resolve device(%s)/taskID:%s/reason:%s",
			p.DeviceID, p.TaskID, err.Error()))
		return err
	}
	if p.Shots > di.MaxShots {
		msg := fmt.Sprintf("shots(%d) is over the limit(%d)", p.Shots, di.MaxShots)
		zap.L().Info(msg + fmt.Sprintf("/taskID:%s", p.TaskID))
		return errors.New(msg)
	}
	return
}

func NewTaskManager(tasks ...Task) (*TaskManager, error) {
	tm := &TaskManager{}
	for _, task := range tasks {
		zap.L().Debug(fmt.Sprintf("registering task type %s", task.TaskType()))
		err := tm.RegisterTask(task)
		if err != nil {
			return nil, err
		}
	}
	taskManager = tm
	return tm, nil
}

func GetTaskManager() *TaskManager {
	return taskManager
}

func SetFailureWithError(t Task, err error) (msg string) {
	td := t.TaskData()
	return SetFailureWithErrorToTaskData(td, err)
}

func SetFailureWithErrorToTaskData(td *TaskData, err error) (msg string) {
	msg = err.Error()
	td.Result.Message = msg
	td.Status = FAILED
	td.Ended = strfmt.DateTime(time.Now())
	return msg
}
