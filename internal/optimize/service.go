package optimize

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// ReportSink records finished reports.
type ReportSink interface {
	SaveReport(ctx context.Context, r model.DiskReport) error
}

// Locker is a drive busy set shared with other processes. Keys are
// normalised drive letters.
type Locker interface {
	TryAcquire(ctx context.Context, drive string) (bool, error)
	Release(ctx context.Context, drive string) error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSharedLocks adds a cross-process busy check on top of the
// in-process one.
func WithSharedLocks(l Locker) ServiceOption { return func(s *Service) { s.shared = l } }

// Service is the disk-operations API handed to the CLI and UI. It adds
// a per-drive busy guard and optional report history on top of the
// Orchestrator.
type Service struct {
	drives   *drives.Inventory
	detector Classifier
	orch     *Orchestrator
	locks    *DriveLocks
	shared   Locker
	sink     ReportSink
	logger   *slog.Logger
}

func NewService(inv *drives.Inventory, detector Classifier, orch *Orchestrator, sink ReportSink, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		drives:   inv,
		detector: detector,
		orch:     orch,
		locks:    NewDriveLocks(),
		sink:     sink,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListDrives() []model.DriveInfo { return s.drives.List() }

func (s *Service) GetDriveInfo(letter string) (model.DriveInfo, error) {
	return s.drives.Get(letter)
}

func (s *Service) GetDriveType(ctx context.Context, letter string) model.MediaType {
	return s.detector.Classify(ctx, letter)
}

func (s *Service) CleanTempFiles(ctx context.Context, letter string) model.DiskReport {
	return s.exclusive(ctx, letter, model.OpTempPurge, s.orch.PurgeTemp)
}

func (s *Service) ExecuteTrim(ctx context.Context, letter string) model.DiskReport {
	return s.exclusive(ctx, letter, model.OpTrim, s.orch.Trim)
}

func (s *Service) Defragment(ctx context.Context, letter string) model.DiskReport {
	return s.exclusive(ctx, letter, model.OpDefragment, s.orch.Defragment)
}

func (s *Service) exclusive(ctx context.Context, letter string, kind model.OperationKind, op func(context.Context, string) model.DiskReport) model.DiskReport {
	if !s.locks.TryAcquire(letter) {
		return s.busy(letter, kind)
	}
	defer s.locks.Release(letter)

	if s.shared != nil {
		key := drives.Normalize(letter)
		ok, err := s.shared.TryAcquire(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("shared drive lock unavailable", slog.String("drive", key), slog.Any("error", err))
		case !ok:
			return s.busy(letter, kind)
		default:
			defer func() {
				if err := s.shared.Release(context.WithoutCancel(ctx), key); err != nil {
					s.logger.Warn("releasing drive lock failed", slog.String("drive", key), slog.Any("error", err))
				}
			}()
		}
	}

	rep := op(ctx, letter)
	if s.sink != nil {
		if err := s.sink.SaveReport(ctx, rep); err != nil {
			s.logger.Warn("saving report failed", slog.Any("error", err))
		}
	}
	return rep
}

func (s *Service) busy(letter string, kind model.OperationKind) model.DiskReport {
	s.logger.Info("drive busy", slog.String("drive", letter), slog.String("op", kind.String()))
	return model.DiskReport{
		Drive:       letter,
		Operation:   kind,
		Description: fmt.Sprintf("Another operation is already running on %s.", letter),
		ExecutedAt:  s.orch.now(),
	}
}
