package availability

import (
	"context"
	"encoding/json"
	"time"

	"fieldops/utils"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// TaskTypeRecompute is the asynq task enqueued for each company whose
// availability may have changed.
const TaskTypeRecompute = "availability:recompute"

// RecomputePayload identifies one company(+service) recomputation.
type RecomputePayload struct {
	CompanyID string `json:"companyId"`
	ServiceID string `json:"serviceId,omitempty"`
}

// NewRecomputeTask builds the asynq task for one recomputation.
func NewRecomputeTask(companyID, serviceID string) (*asynq.Task, error) {
	payload, err := json.Marshal(RecomputePayload{CompanyID: companyID, ServiceID: serviceID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRecompute, payload), nil
}

// companyDoc is the slice of a booking or worker document the reactor cares
// about.
type companyDoc struct {
	CompanyID string `bson:"company_id" json:"companyId"`
	ServiceID string `bson:"service_id,omitempty" json:"serviceId,omitempty"`
}

// changeEvent mirrors the change-stream fields the reactor reads. The
// post-image covers inserts and updates; the pre-image covers deletes and
// lets a company reassignment refresh the company that lost the record too.
type changeEvent struct {
	OperationType string     `bson:"operationType"`
	FullDocument  companyDoc `bson:"fullDocument"`
	BeforeChange  companyDoc `bson:"fullDocumentBeforeChange"`
}

// recomputeTargets decides which companies a single document write affects.
// The new document wins; when the write moved the record between companies,
// both the old and new company are recomputed. Duplicates collapse to one.
func recomputeTargets(before, after companyDoc) []RecomputePayload {
	var targets []RecomputePayload
	if after.CompanyID != "" {
		targets = append(targets, RecomputePayload{CompanyID: after.CompanyID, ServiceID: after.ServiceID})
	}
	if before.CompanyID != "" && before.CompanyID != after.CompanyID {
		targets = append(targets, RecomputePayload{CompanyID: before.CompanyID, ServiceID: before.ServiceID})
	}
	return targets
}

// ChangeReactor watches the bookings and workers collections and enqueues a
// coarse recomputation for each affected company. It runs after the fact
// with no rollback capability, so every failure here is logged and
// swallowed: a reactor hiccup must never fail the write that triggered it.
type ChangeReactor struct {
	Bookings *mongo.Collection
	Workers  *mongo.Collection
	Queue    *asynq.Client
}

// Run starts one watcher per collection and blocks until ctx is cancelled.
func (r *ChangeReactor) Run(ctx context.Context) {
	go r.watch(ctx, r.Bookings, "bookings")
	go r.watch(ctx, r.Workers, "workers")
	<-ctx.Done()
}

func (r *ChangeReactor) watch(ctx context.Context, coll *mongo.Collection, name string) {
	logger := utils.GetLogger()
	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)

	for ctx.Err() == nil {
		stream, err := coll.Watch(ctx, mongo.Pipeline{}, opts)
		if err != nil {
			logger.Warn("reactor: failed to open change stream, retrying",
				zap.String("collection", name), zap.Error(err))
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		r.consume(ctx, stream, name)
		stream.Close(context.Background())
	}
}

func (r *ChangeReactor) consume(ctx context.Context, stream *mongo.ChangeStream, name string) {
	logger := utils.GetLogger()
	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			logger.Warn("reactor: failed to decode change event",
				zap.String("collection", name), zap.Error(err))
			continue
		}
		for _, target := range recomputeTargets(ev.BeforeChange, ev.FullDocument) {
			r.enqueue(target, name, ev.OperationType)
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		logger.Warn("reactor: change stream ended, will reopen",
			zap.String("collection", name), zap.Error(err))
	}
}

func (r *ChangeReactor) enqueue(target RecomputePayload, collection, op string) {
	logger := utils.GetLogger()
	task, err := NewRecomputeTask(target.CompanyID, target.ServiceID)
	if err != nil {
		logger.Warn("reactor: failed to build recompute task",
			zap.String("companyID", target.CompanyID), zap.Error(err))
		return
	}
	if _, err := r.Queue.Enqueue(task); err != nil {
		logger.Warn("reactor: failed to enqueue recompute",
			zap.String("companyID", target.CompanyID),
			zap.String("collection", collection),
			zap.String("op", op),
			zap.Error(err))
		return
	}
	logger.Debug("reactor: recompute enqueued",
		zap.String("companyID", target.CompanyID),
		zap.String("collection", collection),
		zap.String("op", op))
}
