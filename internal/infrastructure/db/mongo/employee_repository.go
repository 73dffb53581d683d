package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/employee-registry/internal/core/domain"
)

const (
	collectionEmployees = "employees"
	collectionCounters  = "counters"
	employeeSequence    = "employees"
)

// EmployeeRepository implements ports.EmployeeRepository using MongoDB.
// Ids come from an atomically incremented document in the counters
// collection; email uniqueness is enforced by a unique index.
type EmployeeRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	return &EmployeeRepository{
		col:      db.Collection(collectionEmployees),
		counters: db.Collection(collectionCounters),
	}
}

// employeeDocument is the stored shape. Keys match domain.EmployeeSchema
// column names.
type employeeDocument struct {
	ID         int64                 `bson:"_id"`
	FirstName  string                `bson:"first_name"`
	LastName   string                `bson:"last_name"`
	Email      string                `bson:"email"`
	Phone      string                `bson:"phone,omitempty"`
	Position   string                `bson:"position,omitempty"`
	Department string                `bson:"department,omitempty"`
	HireDate   *time.Time            `bson:"hire_date,omitempty"`
	Salary     *primitive.Decimal128 `bson:"salary,omitempty"`
	IsActive   bool                  `bson:"is_active"`
	Version    int64                 `bson:"version"`
}

// Save inserts e when it has no id, otherwise replaces the stored document
// guarded by its version.
func (r *EmployeeRepository) Save(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if e.ID == 0 {
		return r.insert(ctx, e)
	}
	return r.replace(ctx, e)
}

func (r *EmployeeRepository) insert(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := toDocument(e)
	if err != nil {
		return nil, err
	}
	doc.ID = id
	doc.Version = 1

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.UniqueViolationError{Field: domain.FieldEmail.JSON, Value: e.Email}
		}
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	return fromDocument(doc)
}

func (r *EmployeeRepository) replace(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	doc, err := toDocument(e)
	if err != nil {
		return nil, err
	}
	doc.Version = e.Version + 1

	filter := bson.M{"_id": e.ID, domain.FieldVersion.Column: e.Version}
	res, err := r.col.ReplaceOne(ctx, filter, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.UniqueViolationError{Field: domain.FieldEmail.JSON, Value: e.Email}
		}
		return nil, fmt.Errorf("replace employee %d: %w", e.ID, err)
	}

	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": e.ID}, options.Count().SetLimit(1))
		if err != nil {
			return nil, fmt.Errorf("check employee %d: %w", e.ID, err)
		}
		if n == 0 {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, domain.ErrConcurrentModification
	}
	return fromDocument(doc)
}

// nextID atomically increments and returns the employee sequence.
func (r *EmployeeRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": employeeSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next employee id: %w", err)
	}
	return counter.Seq, nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return r.findOne(ctx, bson.M{domain.FieldEmail.Column: email})
}

func (r *EmployeeRepository) FindAll(ctx context.Context) ([]*domain.Employee, error) {
	return r.find(ctx, bson.M{})
}

func (r *EmployeeRepository) FindByDepartment(ctx context.Context, department string) ([]*domain.Employee, error) {
	return r.find(ctx, bson.M{domain.FieldDepartment.Column: department})
}

func (r *EmployeeRepository) FindByActive(ctx context.Context, active bool) ([]*domain.Employee, error) {
	return r.find(ctx, bson.M{domain.FieldIsActive.Column: active})
}

// SearchByName matches term as a literal, case-insensitive substring of the
// first or last name.
func (r *EmployeeRepository) SearchByName(ctx context.Context, term string) ([]*domain.Employee, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{domain.FieldFirstName.Column: pattern},
		bson.M{domain.FieldLastName.Column: pattern},
	}})
}

func (r *EmployeeRepository) CountByDepartment(ctx context.Context, department string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{domain.FieldDepartment.Column: department})
	if err != nil {
		return 0, fmt.Errorf("count employees by department: %w", err)
	}
	return n, nil
}

func (r *EmployeeRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, nil)
}

// EnsureIndexes creates the indexes the repository relies on. The unique
// email index is what enforces email uniqueness.
func (r *EmployeeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: domain.FieldEmail.Column, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{Keys: bson.D{{Key: domain.FieldDepartment.Column, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldIsActive.Column, Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *EmployeeRepository) findOne(ctx context.Context, filter bson.M) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc employeeDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return fromDocument(&doc)
}

func (r *EmployeeRepository) find(ctx context.Context, filter bson.M) ([]*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}
	defer cur.Close(ctx)

	var docs []employeeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}

	out := make([]*domain.Employee, 0, len(docs))
	for i := range docs {
		e, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func toDocument(e *domain.Employee) (*employeeDocument, error) {
	doc := &employeeDocument{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone,
		Position:   e.Position,
		Department: e.Department,
		HireDate:   domain.NormalizeDate(e.HireDate),
		IsActive:   e.IsActive,
		Version:    e.Version,
	}
	if e.Salary != nil {
		d, err := primitive.ParseDecimal128(e.Salary.StringFixed(domain.SalaryScale))
		if err != nil {
			return nil, fmt.Errorf("encode salary: %w", err)
		}
		doc.Salary = &d
	}
	return doc, nil
}

func fromDocument(doc *employeeDocument) (*domain.Employee, error) {
	e := &domain.Employee{
		ID:         doc.ID,
		FirstName:  doc.FirstName,
		LastName:   doc.LastName,
		Email:      doc.Email,
		Phone:      doc.Phone,
		Position:   doc.Position,
		Department: doc.Department,
		HireDate:   domain.NormalizeDate(doc.HireDate),
		IsActive:   doc.IsActive,
		Version:    doc.Version,
	}
	if doc.Salary != nil {
		s, err := decimal.NewFromString(doc.Salary.String())
		if err != nil {
			return nil, fmt.Errorf("decode salary: %w", err)
		}
		e.Salary = &s
	}
	return e, nil
}
