package service

import (
	"alcyxob/sales-reports/internal/domain"
	"alcyxob/sales-reports/internal/repository"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryStorage is an in-memory storage.FileStorage.
type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putCalls  int
	putErr    error
	presign   string
	deleteErr error
	deleted   []string
	delay     time.Duration
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) PutObject(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) error {
	m.mu.Lock()
	m.putCalls++
	putErr := m.putErr
	m.mu.Unlock()

	data, err := io.ReadAll(body)
	if err != nil {
		return errors.New("upload aborted: " + err.Error())
	}
	if putErr != nil {
		return putErr
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = data
	return nil
}

func (m *memoryStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if m.presign == "" {
		return "", errors.New("presign failed")
	}
	return m.presign + "/" + objectKey, nil
}

func (m *memoryStorage) DeleteObject(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, objectKey)
	m.deleted = append(m.deleted, objectKey)
	return nil
}

func (m *memoryStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *memoryStorage) object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

func (m *memoryStorage) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putCalls
}

// memoryRepository is an in-memory repository.ReportRepository.
type memoryRepository struct {
	mu      sync.Mutex
	byID      map[primitive.ObjectID]domain.SalesReport
	saveErr   error
	deleteErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{byID: map[primitive.ObjectID]domain.SalesReport{}}
}

func (r *memoryRepository) Save(ctx context.Context, report *domain.SalesReport) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return primitive.NilObjectID, r.saveErr
	}
	for id, existing := range r.byID {
		if existing.ObjectKey == report.ObjectKey {
			report.ID = id
			r.byID[id] = *report
			return id, nil
		}
	}
	report.ID = primitive.NewObjectID()
	r.byID[report.ID] = *report
	return report.ID, nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SalesReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &report, nil
}

func (r *memoryRepository) ListByVendor(ctx context.Context, vendorID string) ([]domain.SalesReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.SalesReport{}
	for _, report := range r.byID {
		if report.VendorID == vendorID {
			out = append(out, report)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// failingReader yields some bytes, then an error.
type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

// fixedClock returns the same instant on every call.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// steppingClock advances by step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}
