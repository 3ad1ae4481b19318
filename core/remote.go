package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const remoteRequestTimeout = 60 * time.Second

// SubmitTaskData creates the remote task and adopts the service-assigned
// task ID. The previous client-generated ID is kept as the idempotency token.
func SubmitTaskData(td *TaskData) error {
	if td.ClientToken == "" {
		td.ClientToken = td.ID
	}
	ctx, cancel := context.WithTimeout(context.Background(), remoteRequestTimeout)
	defer cancel()
	c := GetSystemComponents().Container
	return c.Invoke(
		func(q QuantumClient) error {
			taskID, status, createErr := q.CreateTask(ctx, td)
			if createErr != nil {
				return createErr
			}
			td.ID = taskID
			td.Status = status
			return nil
		})
}

// RefreshTaskData polls the remote status once. Result payloads are left to
// FetchTaskData so polling stays cheap.
func RefreshTaskData(td *TaskData) error {
	ctx, cancel := context.WithTimeout(context.Background(), remoteRequestTimeout)
	defer cancel()
	c := GetSystemComponents().Container
	return c.Invoke(
		func(q QuantumClient) error {
			remote, getErr := q.GetTask(ctx, td.ID)
			if getErr != nil {
				return getErr
			}
			td.Status = remote.Status
			if !time.Time(remote.Ended).IsZero() {
				td.Ended = remote.Ended
			}
			return nil
		})
}

// FetchTaskData pulls the whole remote task def and adopts its result.
func FetchTaskData(td *TaskData) error {
	ctx, cancel := context.WithTimeout(context.Background(), remoteRequestTimeout)
	defer cancel()
	c := GetSystemComponents().Container
	return c.Invoke(
		func(q QuantumClient) error {
			remote, getErr := q.GetTask(ctx, td.ID)
			if getErr != nil {
				return getErr
			}
			td.Status = remote.Status
			td.Result = remote.Result
			if !time.Time(remote.Ended).IsZero() {
				td.Ended = remote.Ended
			}
			return nil
		})
}

// CancelTaskData requests a remote cancellation. The new status arrives via
// the next refresh; cancellation is not synchronous on the service side.
func CancelTaskData(td *TaskData) error {
	ctx, cancel := context.WithTimeout(context.Background(), remoteRequestTimeout)
	defer cancel()
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(q QuantumClient) error {
			return q.CancelTask(ctx, td.ID)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to cancel a task(%s). Reason:%s", td.ID, err.Error()))
	}
	return err
}
