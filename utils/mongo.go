package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/raushankrgupta/resale-catalog-parser/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client

// ConnectMongo initializes the MongoDB connection
func ConnectMongo(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database
	err = client.Ping(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	Client = client
	log.Println("Connected to MongoDB!")
	return nil
}

// DisconnectMongo closes the shared client, if any
func DisconnectMongo(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
	}
	Client = nil
}

// GetCollection returns a handle to a MongoDB collection
func GetCollection(databaseName, collectionName string) *mongo.Collection {
	if Client == nil {
		log.Fatal("MongoDB client is not initialized")
	}
	return Client.Database(databaseName).Collection(collectionName)
}

// CatalogStore reads and writes product records in one collection
type CatalogStore struct {
	Collection *mongo.Collection
}

func NewCatalogStore(coll *mongo.Collection) *CatalogStore {
	return &CatalogStore{Collection: coll}
}

// Insert adds record as a new document and returns its id. Duplicates are not checked.
func (s *CatalogStore) Insert(ctx context.Context, record *models.ProductRecord) (string, error) {
	res, err := s.Collection.InsertOne(ctx, record)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", record.UniqueArticle, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

// FindByBrand loads the update projection of every document of brand.
func (s *CatalogStore) FindByBrand(ctx context.Context, brand string) ([]models.StoredProduct, error) {
	projection := bson.M{"_id": 0, "brand": 1, "article": 1, "colors": 1, "deliveryPrice": 1}
	cursor, err := s.Collection.Find(ctx, bson.M{"brand": brand}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("find brand %s: %w", brand, err)
	}

	var products []models.StoredProduct
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode brand %s: %w", brand, err)
	}
	return products, nil
}

// UpdateAvailability sets the update's fields on the brand's article and reports
// whether a document actually changed.
func (s *CatalogStore) UpdateAvailability(ctx context.Context, brand, article string, update *models.AvailabilityUpdate) (bool, error) {
	filter := bson.M{"brand": brand, "article": article}
	res, err := s.Collection.UpdateOne(ctx, filter, bson.M{"$set": update.SetDocument()})
	if err != nil {
		return false, fmt.Errorf("update %s %s: %w", brand, article, err)
	}
	return res.ModifiedCount == 1, nil
}
