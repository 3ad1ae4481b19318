//go:build unit
// +build unit

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newMemoryStoreTask(t *testing.T, id string, status Status) Task {
	t.Helper()
	tc, err := NewTaskContext()
	assert.Nil(t, err)
	td := NewTaskData()
	td.ID = id
	td.Status = status
	return (&testSamplingTask{}).New(td, tc)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := SCWithStoreContainer()
	defer s.TearDown()

	task := newMemoryStoreTask(t, "test1", QUEUED)
	err := s.Invoke(
		func(st TaskStore) error {
			return st.Insert(task)
		})
	assert.Nil(t, err)

	err = s.Invoke(
		func(st TaskStore) error {
			got, getErr := st.Get("test1")
			if getErr != nil {
				return getErr
			}
			assert.Equal(t, QUEUED, got.TaskData().Status)
			return nil
		})
	assert.Nil(t, err)

	err = s.Invoke(
		func(st TaskStore) error {
			_, getErr := st.Get("missing")
			assert.EqualError(t, getErr, "not found missing")
			return nil
		})
	assert.Nil(t, err)
}

func TestMemoryStorePending(t *testing.T) {
	s := SCWithStoreContainer()
	defer s.TearDown()

	err := s.Invoke(
		func(st TaskStore) error {
			assert.Nil(t, st.Insert(newMemoryStoreTask(t, "queued", QUEUED)))
			assert.Nil(t, st.Insert(newMemoryStoreTask(t, "running", RUNNING)))
			assert.Nil(t, st.Insert(newMemoryStoreTask(t, "done", COMPLETED)))

			pending, pendingErr := st.Pending()
			assert.Nil(t, pendingErr)
			assert.Len(t, pending, 2)
			return nil
		})
	assert.Nil(t, err)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := SCWithStoreContainer()
	defer s.TearDown()

	err := s.Invoke(
		func(st TaskStore) error {
			assert.Nil(t, st.Insert(newMemoryStoreTask(t, "test1", QUEUED)))
			assert.Nil(t, st.Delete("test1"))
			assert.EqualError(t, st.Delete("test1"), "failed to find test1")
			return nil
		})
	assert.Nil(t, err)
}

func TestMemoryStoreConsumesStoreChan(t *testing.T) {
	s := SCWithStoreContainer()
	defer s.TearDown()

	task := newMemoryStoreTask(t, "test1", RUNNING)
	s.Channels.StoreChan <- task

	var got Task
	var err error
	for i := 0; i < 50; i++ {
		err = s.Invoke(
			func(st TaskStore) error {
				var getErr error
				got, getErr = st.Get("test1")
				return getErr
			})
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Nil(t, err)
	assert.Equal(t, RUNNING, got.TaskData().Status)
}
