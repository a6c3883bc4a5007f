package returns

import "context"

// Store is the durable record of return requests and their satellite
// records. Transition writes are compare-and-swap on (id, expectedVersion):
// implementations must fail with ErrStaleState when the stored version does
// not match, and bump req.Version on success. CreateInspection and
// CreateRefund commit the record and the status advance atomically.
type Store interface {
	CreateReturn(ctx context.Context, req *ReturnRequest) error
	GetReturn(ctx context.Context, id string) (*ReturnRequest, error)
	ListReturns(ctx context.Context, f Filter) ([]*ReturnRequest, error)
	StreamReturns(ctx context.Context, f Filter, fn func(*ReturnRequest) error) error

	UpdateStatus(ctx context.Context, req *ReturnRequest, expectedVersion int64, changedBy string) error

	CreateInspection(ctx context.Context, rec *InspectionRecord, req *ReturnRequest, expectedVersion int64) error
	GetInspection(ctx context.Context, returnID string) (*InspectionRecord, error)

	CreateRefund(ctx context.Context, rec *RefundRecord, req *ReturnRequest, expectedVersion int64) error
	GetRefund(ctx context.Context, returnID string) (*RefundRecord, error)
	ListRefunds(ctx context.Context) ([]*RefundRecord, error)

	History(ctx context.Context, returnID string) ([]*StatusChange, error)
}
