package delivery

import (
	"context"
	"errors"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/entregas/core"
)

var (
	// errors
	ErrNotFound = errors.New("delivery not found")
)

type (
	Repository interface {
		CreateDelivery(ctx context.Context, d Delivery) (Delivery, error)
		// QueryDeliveries returns the deliveries matching all set filter fields.
		QueryDeliveries(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Delivery, error)
		GetDeliveryByID(ctx context.Context, id string) (Delivery, error)
		// UpdateDeliveryStatus overwrites the status of a Delivery. Returns ErrNotFound if absent.
		UpdateDeliveryStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (Delivery, error)
		// DeleteDelivery removes a Delivery for good. Returns ErrNotFound if absent.
		DeleteDelivery(ctx context.Context, id string) error
		DeleteAllDeliveries(ctx context.Context) error
	}

	Service interface {
		Query(ctx context.Context, filter QueryFilter) ([]Delivery, error)
		Create(ctx context.Context, nd NewDelivery, upload *core.Upload, baseURL string) (Delivery, error)
		UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Delivery, error)
		Delete(ctx context.Context, id string) error
		// Seed replaces every stored Delivery with the given ones.
		Seed(ctx context.Context, deliveries []Delivery) ([]Delivery, error)
	}

	service struct {
		repo       Repository
		files      core.FileStore
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, files core.FileStore, validate *validator.Validate, translator ut.Translator) Service {
	return &service{
		repo:       repo,
		files:      files,
		validate:   validate,
		translator: translator,
	}
}

// Query lists the deliveries, most recent first, optionally keeping only those of filter.Owner.
func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Delivery, error) {
	filter.Clean()
	deliveries, err := svc.repo.QueryDeliveries(ctx, filter, DefaultOrdering)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying deliveries")
	}
	if deliveries == nil {
		deliveries = []Delivery{}
	}
	return deliveries, nil
}

// Create stores a new Delivery in InitialStatus.
// When upload is set, the file is saved and its URL replaces nd.FileURL.
func (svc *service) Create(ctx context.Context, nd NewDelivery, upload *core.Upload, baseURL string) (Delivery, error) {
	if err := nd.Validate(svc.validate, upload != nil); err != nil {
		return Delivery{}, core.TranslateValidationErrors(err, svc.translator)
	}
	dueDate, _ := core.ParseDate(nd.DueDate) // validated

	fileURL := nd.FileURL
	var stored string
	if upload != nil {
		if svc.files == nil {
			return Delivery{}, errors.New("no file store configured")
		}
		name := core.UniqueFilename(upload.Filename)
		url, err := svc.files.Save(ctx, name, *upload, baseURL)
		if err != nil {
			return Delivery{}, pkgerrors.Wrap(err, "saving uploaded file")
		}
		fileURL, stored = url, name
	}

	now := time.Now().UTC()
	d := Delivery{
		Owner:     nd.Owner,
		Subject:   nd.Subject,
		Task:      nd.Task,
		DueDate:   dueDate,
		FileURL:   fileURL,
		Status:    InitialStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d, err := svc.repo.CreateDelivery(ctx, d)
	if err != nil {
		err = pkgerrors.Wrap(err, "creating delivery")
		if stored != "" {
			// the request may already be canceled, the file must go anyway
			if rmErr := svc.files.Delete(context.WithoutCancel(ctx), stored); rmErr != nil {
				err = pkgerrors.Wrapf(err, "removing uploaded file %q: %v", stored, rmErr)
			}
		}
		return Delivery{}, err
	}
	return d, nil
}

// UpdateStatus moves a Delivery to us.Status. Any status may follow any other one.
func (svc *service) UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Delivery, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Delivery{}, core.TranslateValidationErrors(err, svc.translator)
	}
	d, err := svc.repo.UpdateDeliveryStatus(ctx, id, us.Status, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Delivery{}, ErrNotFound
		}
		return Delivery{}, pkgerrors.Wrap(err, "updating delivery status")
	}
	return d, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteDelivery(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return pkgerrors.Wrap(err, "deleting delivery")
	}
	return nil
}

func (svc *service) Seed(ctx context.Context, deliveries []Delivery) ([]Delivery, error) {
	if err := svc.repo.DeleteAllDeliveries(ctx); err != nil {
		return nil, pkgerrors.Wrap(err, "deleting deliveries")
	}

	created := make([]Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		if !d.Status.IsValid() {
			d.Status = InitialStatus
		}
		now := time.Now().UTC()
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		if d.UpdatedAt.IsZero() {
			d.UpdatedAt = d.CreatedAt
		}
		d, err := svc.repo.CreateDelivery(ctx, d)
		if err != nil {
			return created, pkgerrors.Wrap(err, "creating delivery")
		}
		created = append(created, d)
	}
	return created, nil
}
