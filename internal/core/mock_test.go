package core

import (
	"context"
	"sync"

	"github.com/agenthands/contactmerge/internal/driver"
)

type MockStore struct {
	Saved []*driver.RunRecord
	Err   error
}

func (m *MockStore) SaveRun(ctx context.Context, run *driver.RunRecord) error {
	m.Saved = append(m.Saved, run)
	return m.Err
}

func (m *MockStore) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockStore) Close(ctx context.Context) error {
	return nil
}

type MockLLM struct {
	mu            sync.Mutex
	Response      string
	ResponseQueue []string
	Err           error
	Calls         int
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

func driverEdge(source, target int, rule string) driver.DuplicateEdge {
	return driver.DuplicateEdge{Source: source, Target: target, Rule: rule}
}
