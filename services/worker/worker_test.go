package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"funpay/lotworker/internal/lots"
	"funpay/lotworker/services/publisher"

	"github.com/stretchr/testify/assert"
)

// MockSource implements the Source interface for testing
type MockSource struct {
	records   map[int64][]lots.LotRecord
	scrapeErr error
}

// Ensure MockSource implements Source
var _ Source = (*MockSource)(nil)

func (m *MockSource) Scrape(ctx context.Context, nodeID int64) ([]lots.LotRecord, error) {
	if m.scrapeErr != nil {
		return nil, m.scrapeErr
	}
	return m.records[nodeID], nil
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu       sync.Mutex
	messages map[string][]byte
	trimmed  int
}

// Ensure MockPublisher implements publisher.Publisher
var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		messages: make(map[string][]byte),
	}
}

func (m *MockPublisher) Publish(key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	messageCopy := make([]byte, len(message))
	copy(messageCopy, message)
	m.messages[key] = messageCopy
	return nil
}

func (m *MockPublisher) TrimStreams() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trimmed++
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

func TestWorkerRunOnce(t *testing.T) {
	ctx := context.Background()
	mockPublisher := NewMockPublisher()

	source := &MockSource{
		records: map[int64][]lots.LotRecord{
			81: {
				{Href: "https://funpay.com/en/lots/offer?id=1", Description: "Account", Price: "10 $", Region: "EU"},
			},
			149: {
				{Href: "https://funpay.com/en/lots/offer?id=2", Description: "Gold", Price: "5 $", Region: "Night Elf"},
				{Href: "https://funpay.com/en/lots/offer?id=3", Description: "Gold", Price: "7 $", Region: "Night Elf"},
			},
		},
	}

	w := NewWorker(ctx, source, []int64{81, 149}, mockPublisher, time.Minute)
	w.RunOnce()

	assert.Equal(t, 1, mockPublisher.trimmed)
	assert.Len(t, mockPublisher.messages, 2)

	var published []lots.LotRecord
	err := json.Unmarshal(mockPublisher.messages["149"], &published)
	assert.NoError(t, err)
	assert.Len(t, published, 2)
	assert.Equal(t, "5 $", published[0].Price)
}

func TestWorkerScrapeError(t *testing.T) {
	ctx := context.Background()
	mockPublisher := NewMockPublisher()

	source := &MockSource{scrapeErr: errors.New("fetch failed")}

	w := NewWorker(ctx, source, []int64{81}, mockPublisher, time.Minute)
	w.RunOnce()

	// Nothing published, streams still trimmed
	assert.Empty(t, mockPublisher.messages)
	assert.Equal(t, 1, mockPublisher.trimmed)
}

func TestWorkerEmptyResult(t *testing.T) {
	ctx := context.Background()
	mockPublisher := NewMockPublisher()

	source := &MockSource{records: map[int64][]lots.LotRecord{}}

	w := NewWorker(ctx, source, []int64{81}, mockPublisher, time.Minute)
	w.RunOnce()

	assert.Empty(t, mockPublisher.messages)
}

func TestWorkerStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mockPublisher := NewMockPublisher()
	source := &MockSource{records: map[int64][]lots.LotRecord{}}

	w := NewWorker(ctx, source, []int64{81}, mockPublisher, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
