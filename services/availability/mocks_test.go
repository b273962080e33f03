package availability

import (
	"context"
	"sync"
	"time"

	"fieldops/models"

	"go.mongodb.org/mongo-driver/bson"
)

// fakeBookingRepo serves bookings from memory. ActiveForWorker mirrors the
// real repo's contract: only blocking statuses come back.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string][]models.Booking
	err      error
	calls    int
}

func (f *fakeBookingRepo) ActiveForWorker(workerID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var active []models.Booking
	for _, b := range f.bookings[workerID] {
		if models.IsBlockingStatus(b.Status) {
			active = append(active, b)
		}
	}
	return active, nil
}

func (f *fakeBookingRepo) activeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBookingRepo) GetByID(id string) (*models.Booking, error) { return nil, nil }
func (f *fakeBookingRepo) Create(b *models.Booking) error             { return nil }
func (f *fakeBookingRepo) UpdateWithDocument(id string, doc bson.M) error {
	return nil
}
func (f *fakeBookingRepo) ExpireLapsedReservations(now time.Time) (int64, error) { return 0, nil }

type fakeWorkerRepo struct {
	workers []models.Worker
	err     error
}

func (f *fakeWorkerRepo) GetByID(id string) (*models.Worker, error) { return nil, nil }

func (f *fakeWorkerRepo) EligibleForService(companyID, serviceID string) ([]models.Worker, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.workers, nil
}

// fakeSnapshotRepo stores snapshots by key, like the Mongo upsert does.
type fakeSnapshotRepo struct {
	mu      sync.Mutex
	store   map[string]models.CompanyAvailabilitySnapshot
	upserts int
	err     error
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{store: make(map[string]models.CompanyAvailabilitySnapshot)}
}

func (f *fakeSnapshotRepo) Upsert(s *models.CompanyAvailabilitySnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.err != nil {
		return f.err
	}
	f.store[s.Key] = *s
	return nil
}

func (f *fakeSnapshotRepo) GetByKey(key string) (*models.CompanyAvailabilitySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.store[key]
	if !ok {
		return nil, ErrDataFetch
	}
	return &s, nil
}

func (f *fakeSnapshotRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.store)
}

type fakeOfferingRepo struct {
	offerings []models.ServiceOffering
	err       error
}

func (f *fakeOfferingRepo) ActiveByService(serviceID string) ([]models.ServiceOffering, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.offerings, nil
}

func (f *fakeOfferingRepo) AllActive() ([]models.ServiceOffering, error) {
	return f.ActiveByService("")
}

// fakeAggregator lets batch tests script per-company behaviour, including
// panics.
type fakeAggregator struct {
	forSlot func(companyID string) *models.AvailabilityResult
}

func (f *fakeAggregator) AggregateForSlot(ctx context.Context, companyID, serviceID string, slot TimeSlot) *models.AvailabilityResult {
	return f.forSlot(companyID)
}

func (f *fakeAggregator) Aggregate(ctx context.Context, companyID, serviceID string) (*models.CompanyAvailabilitySnapshot, error) {
	res := f.forSlot(companyID)
	return &models.CompanyAvailabilitySnapshot{
		Key:              models.SnapshotKey(companyID, serviceID),
		CompanyID:        companyID,
		ServiceID:        serviceID,
		IsAvailable:      res.Available,
		AvailableWorkers: len(res.AvailableWorkers),
		TotalWorkers:     res.TotalWorkers,
	}, nil
}

// stepClock hands out strictly increasing timestamps.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}
