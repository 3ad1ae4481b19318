package core

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type MemoryStore struct {
	storeMap  map[string]Task
	storeChan <-chan Task
	mu        sync.RWMutex
}

func (m *MemoryStore) Setup(sc StoreChan, c *Conf) error {
	m.storeMap = make(map[string]Task)
	m.storeChan = sc
	go func() {
		for {
			task := <-m.storeChan
			if task == nil { //when storeChan is closed
				return
			}
			zap.L().Debug(fmt.Sprintf("[MemoryStore] Received %s", task.TaskData().ID))
			if err := m.Update(task); err != nil {
				zap.L().Error(fmt.Sprintf("failed to update a task(%s). Reason:%s",
					task.TaskData().ID, err.Error()))
			}
		}
	}()
	return nil
}

func (m *MemoryStore) Insert(t Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeMap[t.TaskData().ID] = t
	return nil
}

func (m *MemoryStore) Get(taskID string) (Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if val, ok := m.storeMap[taskID]; ok {
		return val, nil
	}
	err := fmt.Errorf("not found %s", taskID)
	zap.L().Info("[MemoryStore]", zap.Field(zap.Error(err)))
	return nil, err
}

func (m *MemoryStore) Update(t Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeMap[t.TaskData().ID] = t
	return nil
}

func (m *MemoryStore) Delete(taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.storeMap[taskID]; ok {
		delete(m.storeMap, taskID)
		zap.L().Info(fmt.Sprintf("[MemoryStore] deleted %s from store", taskID))
		return nil
	}
	err := fmt.Errorf("failed to find %s", taskID)
	zap.L().Info("[MemoryStore]", zap.Field(zap.Error(err)))
	return err
}

func (m *MemoryStore) Pending() ([]Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pending := []Task{}
	for _, t := range m.storeMap {
		if !t.TaskData().Status.IsTerminal() {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

func (m *MemoryStore) TearDown() {}
