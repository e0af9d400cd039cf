package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
)

type deliveryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Owner     string             `bson:"owner"`
	Subject   string             `bson:"subject"`
	Task      string             `bson:"task"`
	DueDate   time.Time          `bson:"due_date"`
	FileURL   string             `bson:"file_url"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func newDeliveryDoc(d delivery.Delivery) deliveryDoc {
	return deliveryDoc{
		ID:        primitive.NewObjectID(),
		Owner:     d.Owner,
		Subject:   d.Subject,
		Task:      d.Task,
		DueDate:   d.DueDate,
		FileURL:   d.FileURL,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (doc deliveryDoc) delivery() delivery.Delivery {
	return delivery.Delivery{
		ID:        doc.ID.Hex(),
		Owner:     doc.Owner,
		Subject:   doc.Subject,
		Task:      doc.Task,
		DueDate:   doc.DueDate.UTC(),
		FileURL:   doc.FileURL,
		Status:    delivery.Status(doc.Status),
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

type deliveryRepository struct {
	coll *mongo.Collection
}

var _ delivery.Repository = (*deliveryRepository)(nil) // interface compliance check

func NewDeliveryRepository(db *DB) delivery.Repository {
	return &deliveryRepository{coll: db.db.Collection(deliveriesCollection)}
}

func (repo *deliveryRepository) CreateDelivery(ctx context.Context, d delivery.Delivery) (delivery.Delivery, error) {
	doc := newDeliveryDoc(d)
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return delivery.Delivery{}, errors.Wrap(err, "inserting delivery")
	}
	return doc.delivery(), nil
}

func (repo *deliveryRepository) QueryDeliveries(
	ctx context.Context,
	filter delivery.QueryFilter,
	ordering ...core.DBOrdering,
) ([]delivery.Delivery, error) {
	query := bson.M{}
	if filter.Owner != "" {
		query["owner"] = filter.Owner
	}

	// ObjectIDs grow with insertion time: they break ties between equal timestamps
	sort := bson.D{}
	for _, ord := range ordering {
		sort = append(sort, bson.E{Key: ord.Field, Value: ord.Direction()})
	}
	direction := -1
	if len(ordering) > 0 {
		direction = ordering[0].Direction()
	}
	sort = append(sort, bson.E{Key: "_id", Value: direction})

	cur, err := repo.coll.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, errors.Wrap(err, "finding deliveries")
	}
	defer func() { _ = cur.Close(ctx) }()

	deliveries := make([]delivery.Delivery, 0)
	for cur.Next(ctx) {
		var doc deliveryDoc
		if err = cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding delivery")
		}
		deliveries = append(deliveries, doc.delivery())
	}
	if err = cur.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating deliveries")
	}
	return deliveries, nil
}

func (repo *deliveryRepository) GetDeliveryByID(ctx context.Context, id string) (delivery.Delivery, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return delivery.Delivery{}, delivery.ErrNotFound
	}

	var doc deliveryDoc
	if err = repo.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return delivery.Delivery{}, delivery.ErrNotFound
		}
		return delivery.Delivery{}, errors.Wrap(err, "finding delivery")
	}
	return doc.delivery(), nil
}

func (repo *deliveryRepository) UpdateDeliveryStatus(
	ctx context.Context,
	id string,
	status delivery.Status,
	updatedAt time.Time,
) (delivery.Delivery, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return delivery.Delivery{}, delivery.ErrNotFound
	}

	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": updatedAt}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc deliveryDoc
	if err = repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return delivery.Delivery{}, delivery.ErrNotFound
		}
		return delivery.Delivery{}, errors.Wrap(err, "updating delivery status")
	}
	return doc.delivery(), nil
}

func (repo *deliveryRepository) DeleteDelivery(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return delivery.ErrNotFound
	}

	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "deleting delivery")
	}
	if res.DeletedCount == 0 {
		return delivery.ErrNotFound
	}
	return nil
}

func (repo *deliveryRepository) DeleteAllDeliveries(ctx context.Context) error {
	if _, err := repo.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return errors.Wrap(err, "deleting deliveries")
	}
	return nil
}
