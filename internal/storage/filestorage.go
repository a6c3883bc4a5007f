package storage

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/groow-platform/returns-service/internal/returns"
)

// FileStorage is a JSON-file implementation of returns.Store for local runs
// and tests. The mutex is held for the whole of every operation so the
// version check and the write commit atomically.
type FileStorage struct {
	filePath string
	mu       sync.Mutex
	data     *storageData
}

type storageData struct {
	Returns     []returns.ReturnRequest    `json:"returns"`
	Inspections []returns.InspectionRecord `json:"inspections"`
	Refunds     []returns.RefundRecord     `json:"refunds"`
	History     []returns.StatusChange     `json:"history"`
}

var _ returns.Store = (*FileStorage)(nil)

func NewFileStorage(filePath string) (*FileStorage, error) {
	fs := &FileStorage{
		filePath: filePath,
		data:     &storageData{},
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs, fs.loadLocked()
}

func (fs *FileStorage) loadLocked() error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	fs.data = &storageData{}
	return json.NewDecoder(file).Decode(fs.data)
}

func (fs *FileStorage) saveLocked() error {
	file, err := os.Create(fs.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(fs.data)
}

func (fs *FileStorage) findLocked(id string) int {
	for i := range fs.data.Returns {
		if fs.data.Returns[i].ID == id {
			return i
		}
	}
	return -1
}

func (fs *FileStorage) addHistoryLocked(returnID string, status returns.Status, changedBy string) {
	fs.data.History = append(fs.data.History, returns.StatusChange{
		ReturnID:  returnID,
		Status:    status,
		ChangedBy: changedBy,
		ChangedAt: time.Now().UTC(),
	})
}

func (fs *FileStorage) CreateReturn(_ context.Context, req *returns.ReturnRequest) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return err
	}

	fs.data.Returns = append(fs.data.Returns, *req)
	fs.addHistoryLocked(req.ID, req.Status, req.CustomerEmail)
	return fs.saveLocked()
}

func (fs *FileStorage) GetReturn(_ context.Context, id string) (*returns.ReturnRequest, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return nil, err
	}

	i := fs.findLocked(id)
	if i < 0 {
		return nil, returns.ErrNotFound
	}
	req := fs.data.Returns[i]
	return &req, nil
}

func (fs *FileStorage) ListReturns(_ context.Context, f returns.Filter) ([]*returns.ReturnRequest, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return nil, err
	}
	return fs.filterLocked(f), nil
}

func (fs *FileStorage) filterLocked(f returns.Filter) []*returns.ReturnRequest {
	var out []*returns.ReturnRequest
	for i := range fs.data.Returns {
		req := fs.data.Returns[i]
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		out = append(out, &req)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

func (fs *FileStorage) StreamReturns(ctx context.Context, f returns.Filter, fn func(*returns.ReturnRequest) error) error {
	reqs, err := fs.ListReturns(ctx, f)
	if err != nil {
		return err
	}
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(req); err != nil {
			return err
		}
	}
	return nil
}

func (fs *FileStorage) UpdateStatus(_ context.Context, req *returns.ReturnRequest, expectedVersion int64, changedBy string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return err
	}
	if err := fs.casLocked(req, expectedVersion, changedBy); err != nil {
		return err
	}
	return fs.saveLocked()
}

// casLocked commits req under the optimistic version check. On success
// req.Version is bumped to expectedVersion+1.
func (fs *FileStorage) casLocked(req *returns.ReturnRequest, expectedVersion int64, changedBy string) error {
	i := fs.findLocked(req.ID)
	if i < 0 {
		return returns.ErrNotFound
	}
	if fs.data.Returns[i].Version != expectedVersion {
		return returns.ErrStaleState
	}

	req.Version = expectedVersion + 1
	fs.data.Returns[i] = *req
	fs.addHistoryLocked(req.ID, req.Status, changedBy)
	return nil
}

func (fs *FileStorage) CreateInspection(_ context.Context, rec *returns.InspectionRecord, req *returns.ReturnRequest, expectedVersion int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return err
	}

	for _, existing := range fs.data.Inspections {
		if existing.ReturnID == rec.ReturnID {
			return returns.ErrDuplicateInspection
		}
	}
	if err := fs.casLocked(req, expectedVersion, rec.InspectedBy); err != nil {
		return err
	}
	fs.data.Inspections = append(fs.data.Inspections, *rec)
	return fs.saveLocked()
}

func (fs *FileStorage) GetInspection(_ context.Context, returnID string) (*returns.InspectionRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return nil, err
	}

	for i := range fs.data.Inspections {
		if fs.data.Inspections[i].ReturnID == returnID {
			rec := fs.data.Inspections[i]
			return &rec, nil
		}
	}
	return nil, returns.ErrNotFound
}

func (fs *FileStorage) CreateRefund(_ context.Context, rec *returns.RefundRecord, req *returns.ReturnRequest, expectedVersion int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return err
	}

	for _, existing := range fs.data.Refunds {
		if existing.ReturnID == rec.ReturnID {
			return returns.ErrDuplicateRefund
		}
	}
	if err := fs.casLocked(req, expectedVersion, rec.RefundedBy); err != nil {
		return err
	}
	fs.data.Refunds = append(fs.data.Refunds, *rec)
	return fs.saveLocked()
}

func (fs *FileStorage) GetRefund(_ context.Context, returnID string) (*returns.RefundRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return nil, err
	}

	for i := range fs.data.Refunds {
		if fs.data.Refunds[i].ReturnID == returnID {
			rec := fs.data.Refunds[i]
			return &rec, nil
		}
	}
	return nil, returns.ErrNotFound
}

func (fs *FileStorage) ListRefunds(_ context.Context) ([]*returns.RefundRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return nil, err
	}

	out := make([]*returns.RefundRecord, 0, len(fs.data.Refunds))
	for i := range fs.data.Refunds {
		rec := fs.data.Refunds[i]
		out = append(out, &rec)
	}
	return out, nil
}

func (fs *FileStorage) History(_ context.Context, returnID string) ([]*returns.StatusChange, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.loadLocked(); err != nil {
		return nil, err
	}

	var history []*returns.StatusChange
	for i := range fs.data.History {
		if fs.data.History[i].ReturnID == returnID {
			entry := fs.data.History[i]
			history = append(history, &entry)
		}
	}
	return history, nil
}
