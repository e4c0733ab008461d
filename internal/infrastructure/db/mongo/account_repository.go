package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/accounts-api/internal/core/domain"
	"github.com/sirpyerre/accounts-api/internal/core/ports"
)

// Collection and field names are shared with documents already stored by
// earlier deployments.
const accountsCollection = "users"

const (
	fieldEmail   = "email"
	fieldPhone   = "phoneNumber"
	fieldAddedBy = "userAddedFrom"
)

// AccountRepository implements ports.AccountRepository using MongoDB.
type AccountRepository struct {
	col    *mongo.Collection
	hasher ports.PasswordHasher
}

func NewAccountRepository(db *mongo.Database, hasher ports.PasswordHasher) *AccountRepository {
	return &AccountRepository{col: db.Collection(accountsCollection), hasher: hasher}
}

type accountDoc struct {
	ID          primitive.ObjectID  `bson:"_id"`
	FirstName   string              `bson:"firstName,omitempty"`
	MiddleName  string              `bson:"middleName,omitempty"`
	LastName    string              `bson:"lastName,omitempty"`
	Address     string              `bson:"address,omitempty"`
	ProfilePic  string              `bson:"profilePic"`
	PhoneNumber string              `bson:"phoneNumber,omitempty"`
	Email       string              `bson:"email,omitempty"`
	Profession  string              `bson:"profession,omitempty"`
	Password    string              `bson:"password,omitempty"`
	IsLogin     bool                `bson:"isLogin"`
	AddedBy     *primitive.ObjectID `bson:"userAddedFrom"`
	Timestamp   time.Time           `bson:"timestamp"`
}

func (d *accountDoc) toDomain() *domain.Account {
	acc := &domain.Account{
		ID: d.ID.Hex(),
		Profile: domain.Profile{
			FirstName:   d.FirstName,
			MiddleName:  d.MiddleName,
			LastName:    d.LastName,
			Address:     d.Address,
			PhoneNumber: d.PhoneNumber,
			Email:       d.Email,
			Profession:  d.Profession,
		},
		ProfilePic:   d.ProfilePic,
		PasswordHash: d.Password,
		IsLogin:      d.IsLogin,
		CreatedAt:    d.Timestamp,
	}
	if d.AddedBy != nil {
		acc.AddedBy = d.AddedBy.Hex()
	}
	return acc
}

// newAccountDoc builds the document for a new account. It is the pre-persist
// step of the insert path: a plaintext password on the draft is replaced by
// its hash here, exactly once.
func newAccountDoc(d domain.AccountDraft, hasher ports.PasswordHasher, now time.Time) (*accountDoc, error) {
	addedBy, err := parseAddedBy(d.AddedBy)
	if err != nil {
		return nil, err
	}

	doc := &accountDoc{
		ID:          primitive.NewObjectID(),
		FirstName:   d.FirstName,
		MiddleName:  d.MiddleName,
		LastName:    d.LastName,
		Address:     d.Address,
		ProfilePic:  d.ProfilePic,
		PhoneNumber: d.PhoneNumber,
		Email:       d.Email,
		Profession:  d.Profession,
		AddedBy:     addedBy,
		Timestamp:   now.UTC().Truncate(time.Millisecond),
	}

	if d.Password != "" {
		hash, err := hasher.Hash(d.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		doc.Password = hash
	}
	return doc, nil
}

// buildAccountUpdate turns a patch into a Mongo update document. It is the
// pre-persist step of the update path: the password is hashed only when the
// patch supplies a new one, so an update that leaves it out keeps the stored
// hash untouched. Identity fields patched to "" are unset so the partial
// unique indexes never see empty strings.
func buildAccountUpdate(p domain.AccountPatch, hasher ports.PasswordHasher) (bson.M, error) {
	set := bson.M{}
	unset := bson.M{}

	setString := func(field string, v *string) {
		if v != nil {
			set[field] = *v
		}
	}
	setIdentity := func(field string, v *string) {
		switch {
		case v == nil:
		case *v == "":
			unset[field] = ""
		default:
			set[field] = *v
		}
	}

	setString("firstName", p.FirstName)
	setString("middleName", p.MiddleName)
	setString("lastName", p.LastName)
	setString("address", p.Address)
	setString("profession", p.Profession)
	setString("profilePic", p.ProfilePic)
	setIdentity(fieldEmail, p.Email)
	setIdentity(fieldPhone, p.PhoneNumber)

	if p.IsLogin != nil {
		set["isLogin"] = *p.IsLogin
	}
	if p.AddedBy != nil {
		addedBy, err := parseAddedBy(*p.AddedBy)
		if err != nil {
			return nil, err
		}
		set[fieldAddedBy] = addedBy
	}
	if p.Password != nil && *p.Password != "" {
		hash, err := hasher.Hash(*p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		set["password"] = hash
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}

func parseAddedBy(id string) (*primitive.ObjectID, error) {
	if id == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NewValidationError("userAddedFrom must be an account identifier")
	}
	return &oid, nil
}

// identityFilter matches either non-empty identity value. ok is false when
// both are empty, since an empty $or would match every document.
func identityFilter(email, phoneNumber string) (filter bson.M, ok bool) {
	var or bson.A
	if email != "" {
		or = append(or, bson.M{fieldEmail: email})
	}
	if phoneNumber != "" {
		or = append(or, bson.M{fieldPhone: phoneNumber})
	}
	if len(or) == 0 {
		return nil, false
	}
	return bson.M{"$or": or}, true
}

// FindByIdentity retrieves the account whose email or phone number matches.
func (r *AccountRepository) FindByIdentity(ctx context.Context, email, phoneNumber string) (*domain.Account, error) {
	filter, ok := identityFilter(email, phoneNumber)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, filter)
}

// Insert persists a new account and returns it with its identifier.
func (r *AccountRepository) Insert(ctx context.Context, draft domain.AccountDraft) (*domain.Account, error) {
	doc, err := newAccountDoc(draft, r.hasher, time.Now())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves an account by its hex identifier. Malformed identifiers
// cannot have been issued by the store and resolve to ErrAccountNotFound.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindAll returns every stored account.
func (r *AccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}

	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	out := make([]*domain.Account, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// UpdateByID merges the patch into the account and returns the updated record.
func (r *AccountRepository) UpdateByID(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	update, err := buildAccountUpdate(patch, r.hasher)
	if err != nil {
		return nil, err
	}
	if len(update) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique identity indexes. They are partial so that
// accounts without an email or phone number do not collide with each other.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: fieldEmail, Value: 1}},
			Options: options.Index().
				SetName("email_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{fieldEmail: bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: fieldPhone, Value: 1}},
			Options: options.Index().
				SetName("phoneNumber_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{fieldPhone: bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: fieldAddedBy, Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
