package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
)

const deliveryColumns = "id, owner, subject, task, due_date, file_url, status, created_at, updated_at"

// orderableDeliveryFields guards the ORDER BY clause against injection.
var orderableDeliveryFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
}

type deliveryRow struct {
	ID        string    `db:"id"`
	Owner     string    `db:"owner"`
	Subject   string    `db:"subject"`
	Task      string    `db:"task"`
	DueDate   time.Time `db:"due_date"`
	FileURL   string    `db:"file_url"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row deliveryRow) delivery() delivery.Delivery {
	return delivery.Delivery{
		ID:        row.ID,
		Owner:     row.Owner,
		Subject:   row.Subject,
		Task:      row.Task,
		DueDate:   row.DueDate.UTC(),
		FileURL:   row.FileURL,
		Status:    delivery.Status(row.Status),
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type deliveryRepository struct {
	db *sqlx.DB
}

var _ delivery.Repository = (*deliveryRepository)(nil) // interface compliance check

func NewDeliveryRepository(db *DB) delivery.Repository {
	return &deliveryRepository{db: db.db}
}

func (repo *deliveryRepository) CreateDelivery(ctx context.Context, d delivery.Delivery) (delivery.Delivery, error) {
	d.ID = uuid.NewString()
	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO deliveries (`+deliveryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.Owner, d.Subject, d.Task, d.DueDate, d.FileURL, string(d.Status), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return delivery.Delivery{}, errors.Wrap(err, "inserting delivery")
	}
	return d, nil
}

func (repo *deliveryRepository) QueryDeliveries(
	ctx context.Context,
	filter delivery.QueryFilter,
	ordering ...core.DBOrdering,
) ([]delivery.Delivery, error) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(`SELECT ` + deliveryColumns + ` FROM deliveries`)
	if filter.Owner != "" {
		args = append(args, filter.Owner)
		sb.WriteString(` WHERE owner = $1`)
	}
	sb.WriteString(` ORDER BY ` + orderBy(ordering))

	var rows []deliveryRow
	if err := repo.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, errors.Wrap(err, "selecting deliveries")
	}

	deliveries := make([]delivery.Delivery, 0, len(rows))
	for _, row := range rows {
		deliveries = append(deliveries, row.delivery())
	}
	return deliveries, nil
}

// orderBy renders the ORDER BY clause, breaking ties by insertion order.
func orderBy(ordering []core.DBOrdering) string {
	clauses := make([]string, 0, len(ordering)+1)
	seqDirection := "DESC"
	for i, ord := range ordering {
		if !orderableDeliveryFields[ord.Field] {
			continue
		}
		clauses = append(clauses, ord.String())
		if i == 0 && ord.Ascending {
			seqDirection = "ASC"
		}
	}
	if len(clauses) == 0 {
		clauses = append(clauses, delivery.DefaultOrdering.String())
	}
	return strings.Join(append(clauses, "seq "+seqDirection), ", ")
}

func (repo *deliveryRepository) GetDeliveryByID(ctx context.Context, id string) (delivery.Delivery, error) {
	var row deliveryRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return delivery.Delivery{}, delivery.ErrNotFound
		}
		return delivery.Delivery{}, errors.Wrap(err, "selecting delivery")
	}
	return row.delivery(), nil
}

func (repo *deliveryRepository) UpdateDeliveryStatus(
	ctx context.Context,
	id string,
	status delivery.Status,
	updatedAt time.Time,
) (delivery.Delivery, error) {
	var row deliveryRow
	err := repo.db.GetContext(
		ctx,
		&row,
		`UPDATE deliveries SET status = $1, updated_at = $2 WHERE id = $3 RETURNING `+deliveryColumns,
		string(status), updatedAt, id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return delivery.Delivery{}, delivery.ErrNotFound
		}
		return delivery.Delivery{}, errors.Wrap(err, "updating delivery status")
	}
	return row.delivery(), nil
}

func (repo *deliveryRepository) DeleteDelivery(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting delivery")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting delivery")
	}
	if n == 0 {
		return delivery.ErrNotFound
	}
	return nil
}

func (repo *deliveryRepository) DeleteAllDeliveries(ctx context.Context) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM deliveries`); err != nil {
		return errors.Wrap(err, "deleting deliveries")
	}
	return nil
}
