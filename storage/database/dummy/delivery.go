package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
)

type deliveryRepository struct {
	db *deliveryTable
}

var _ delivery.Repository = (*deliveryRepository)(nil) // interface compliance check

func NewDeliveryRepository(db *DB) delivery.Repository {
	return &deliveryRepository{db: db.delivery}
}

func (repo *deliveryRepository) CreateDelivery(_ context.Context, d delivery.Delivery) (delivery.Delivery, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	d.ID = uuid.NewString()
	repo.db.table[d.ID] = &deliveryRow{Delivery: d, seq: repo.db.seq}
	return d, nil
}

func (repo *deliveryRepository) QueryDeliveries(
	_ context.Context,
	filter delivery.QueryFilter,
	ordering ...core.DBOrdering,
) ([]delivery.Delivery, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]*deliveryRow, 0, len(repo.db.table))
	for _, row := range repo.db.table {
		if filter.Owner != "" && row.Owner != filter.Owner {
			continue
		}
		rows = append(rows, row)
	}

	ascending := false
	if len(ordering) > 0 {
		ascending = ordering[0].Ascending
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if ascending {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if ascending {
			return a.seq < b.seq
		}
		return a.seq > b.seq
	})

	deliveries := make([]delivery.Delivery, 0, len(rows))
	for _, row := range rows {
		deliveries = append(deliveries, row.Delivery)
	}
	return deliveries, nil
}

func (repo *deliveryRepository) GetDeliveryByID(_ context.Context, id string) (delivery.Delivery, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if row, ok := repo.db.table[id]; ok {
		return row.Delivery, nil
	}
	return delivery.Delivery{}, delivery.ErrNotFound
}

func (repo *deliveryRepository) UpdateDeliveryStatus(
	_ context.Context,
	id string,
	status delivery.Status,
	updatedAt time.Time,
) (delivery.Delivery, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	row, ok := repo.db.table[id]
	if !ok {
		return delivery.Delivery{}, delivery.ErrNotFound
	}
	row.Status = status
	row.UpdatedAt = updatedAt
	return row.Delivery, nil
}

func (repo *deliveryRepository) DeleteDelivery(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return delivery.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *deliveryRepository) DeleteAllDeliveries(context.Context) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table = make(map[string]*deliveryRow)
	return nil
}
